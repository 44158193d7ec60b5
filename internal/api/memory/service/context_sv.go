package memoryService

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"AssistantGolang/internal/api/memory"
	"AssistantGolang/internal/entity"
	contextPkg "AssistantGolang/pkg/context"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// RankingPolicy tunes the relevance blend. Weights should sum to 1; the
// defaults favor importance, then freshness, then topical overlap.
type RankingPolicy struct {
	ImportanceWeight float64
	RecencyWeight    float64
	TagOverlapWeight float64
	RecencyHalfLife  time.Duration
	MaxItems         int
	CacheTTL         time.Duration
}

func DefaultRankingPolicy() RankingPolicy {
	return RankingPolicy{
		ImportanceWeight: 0.45,
		RecencyWeight:    0.35,
		TagOverlapWeight: 0.20,
		RecencyHalfLife:  24 * time.Hour,
		MaxItems:         10,
		CacheTTL:         30 * time.Second,
	}
}

func bundleCacheKey(userID string) string {
	return fmt.Sprintf("assistant:context_bundle:%s", userID)
}

// BuildContext ranks the user's active memories and patterns into a bounded
// bundle. Entity-free requests may be served from a short-lived cache;
// requests carrying entities always rank fresh because overlap scoring
// depends on them.
func (s *contextService) BuildContext(ctx context.Context, userID string, entities []entity.ExtractedEntity) ([]entity.ContextItem, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if len(entities) == 0 {
		if cached, err := s.cache.Get(ctx, bundleCacheKey(userID)); err == nil {
			var items []entity.ContextItem
			if err := json.Unmarshal([]byte(cached), &items); err == nil {
				return items, nil
			}
		}
	}

	repo, err := s.memoryRepository.NewClient(false)
	if err != nil {
		return nil, err
	}

	memories, err := repo.Memory.Query(ctx, memory.QueryMemoriesRequest{
		UserID:   userID,
		SortBy:   "lastAccessedAt",
		SortDesc: true,
		Limit:    100,
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to load memories for context bundle")
		return nil, err
	}

	now := time.Now().UTC()
	terms := entityTerms(entities)

	items := make([]entity.ContextItem, 0, len(memories))
	for _, m := range memories {
		score := s.score(m, now, terms)
		window := timeWindow(m, now)

		relevance := bucketForScore(score)
		// Critical memories and anything in the immediate window never
		// rank below high, whatever the blended score says.
		if m.Importance == entity.ImportanceCritical || window == entity.WindowNow {
			if relevance != entity.RelevanceCritical {
				relevance = entity.RelevanceHigh
			}
		}

		items = append(items, entity.ContextItem{
			Category:       m.Category,
			Relevance:      relevance,
			RelevanceScore: score,
			TimeWindow:     window,
			Timestamp:      m.LastAccessedAt,
			ExpiresAt:      m.ExpiresAt,
			Metadata: map[string]interface{}{
				"memory_id": m.ID,
				"content":   contentLine(m),
			},
		})
	}

	patterns, err := repo.Pattern.ListByUser(ctx, userID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Warn("Failed to load patterns for context bundle")
	} else {
		for _, p := range patterns {
			score := clamp01(p.Confidence)
			items = append(items, entity.ContextItem{
				Category:       "behavior",
				Relevance:      bucketForScore(score),
				RelevanceScore: score,
				TimeWindow:     windowForAge(now.Sub(p.LastObserved)),
				Timestamp:      p.LastObserved,
				Metadata: map[string]interface{}{
					"pattern_id": p.ID,
					"content":    p.Description,
				},
			})
		}
	}

	sortItemsByScore(items)

	maxItems := s.policy.MaxItems
	if maxItems <= 0 {
		maxItems = 10
	}
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	if len(entities) == 0 && s.policy.CacheTTL > 0 {
		if raw, err := json.Marshal(items); err == nil {
			if err := s.cache.SetWithTTL(ctx, bundleCacheKey(userID), string(raw), s.policy.CacheTTL); err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"user_id":    userID,
				}).Debug("Context bundle cache write failed")
			}
		}
	}

	return items, nil
}

// FormatBundle flattens a bundle into prompt lines for the chat model.
func (s *contextService) FormatBundle(items []entity.ContextItem) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		content, ok := item.Metadata["content"].(string)
		if !ok || content == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", item.Category, content))
	}
	return lines
}

func (s *contextService) score(m entity.Memory, now time.Time, terms []string) float64 {
	importance := float64(m.Importance.Weight()) / 100

	age := now.Sub(m.LastAccessedAt)
	if age < 0 {
		age = 0
	}
	halfLife := s.policy.RecencyHalfLife
	if halfLife <= 0 {
		halfLife = 24 * time.Hour
	}
	recency := math.Exp2(-age.Hours() / halfLife.Hours())

	overlap := 0.0
	if len(terms) > 0 {
		matched := 0
		for _, term := range terms {
			for _, tag := range m.Tags {
				if strings.EqualFold(tag, term) {
					matched++
					break
				}
			}
		}
		overlap = float64(matched) / float64(len(terms))
	}

	score := s.policy.ImportanceWeight*importance +
		s.policy.RecencyWeight*recency +
		s.policy.TagOverlapWeight*overlap

	return clamp01(score)
}

func entityTerms(entities []entity.ExtractedEntity) []string {
	terms := make([]string, 0, len(entities))
	for _, e := range entities {
		if e.Value != "" {
			terms = append(terms, e.Value)
		}
	}
	return terms
}

func bucketForScore(score float64) entity.RelevanceLevel {
	switch {
	case score >= 0.75:
		return entity.RelevanceCritical
	case score >= 0.5:
		return entity.RelevanceHigh
	case score >= 0.25:
		return entity.RelevanceMedium
	default:
		return entity.RelevanceLow
	}
}

func timeWindow(m entity.Memory, now time.Time) entity.TimeWindow {
	if m.IsArchived {
		return entity.WindowArchive
	}
	return windowForAge(now.Sub(m.LastAccessedAt))
}

func windowForAge(age time.Duration) entity.TimeWindow {
	switch {
	case age <= 10*time.Minute:
		return entity.WindowNow
	case age <= 24*time.Hour:
		return entity.WindowToday
	case age <= 7*24*time.Hour:
		return entity.WindowWeek
	default:
		return entity.WindowArchive
	}
}

func contentLine(m entity.Memory) string {
	if m.Summary != "" {
		return m.Summary
	}
	return m.Content
}

func sortItemsByScore(items []entity.ContextItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RelevanceScore > items[j].RelevanceScore
	})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
