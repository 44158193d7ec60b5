package memoryService

import (
	"time"

	"AssistantGolang/internal/api/memory"
	"AssistantGolang/internal/entity"
	contextPkg "AssistantGolang/pkg/context"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *memoryService) CreateMemory(ctx context.Context, req memory.CreateMemoryRequest) (entity.Memory, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if !memory.ValidCategories[req.Category] {
		return entity.Memory{}, memory.ErrInvalidCategory
	}

	importance := entity.ImportanceLevel(req.Importance)
	if req.Importance == "" {
		importance = entity.ImportanceMedium
	} else if _, ok := entity.ImportanceWeights[importance]; !ok {
		return entity.Memory{}, memory.ErrInvalidImportance
	}

	repo, err := s.memoryRepository.NewClient(false)
	if err != nil {
		return entity.Memory{}, err
	}

	now := time.Now().UTC()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return entity.Memory{}, err
	}

	m := entity.Memory{
		ID:               id,
		UserID:           req.UserID,
		Category:         req.Category,
		Importance:       importance,
		Source:           req.Source,
		Content:          req.Content,
		Summary:          req.Summary,
		Tags:             normalizeTags(req.Tags),
		CreatedAt:        now,
		UpdatedAt:        now,
		LastAccessedAt:   now,
		AccessCount:      0,
		ExpiresAt:        req.ExpiresAt,
		RelatedMemoryIDs: []string{},
	}

	if err := repo.Memory.Create(ctx, m); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    req.UserID,
			"error":      err.Error(),
		}).Error("Failed to create memory")
		return entity.Memory{}, memory.ErrCreateMemory
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    req.UserID,
		"memory_id":  id,
		"category":   req.Category,
	}).Info("Memory created")

	return m, nil
}

// GetMemory is a read with a side effect: every fetch bumps the access
// counter so ranking can favor memories the user keeps coming back to.
func (s *memoryService) GetMemory(ctx context.Context, id string) (entity.Memory, error) {
	repo, err := s.memoryRepository.NewClient(false)
	if err != nil {
		return entity.Memory{}, err
	}

	m, err := repo.Memory.GetByID(ctx, id)
	if err != nil {
		return entity.Memory{}, err
	}

	if err := repo.Memory.TouchAccess(ctx, id); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"memory_id":  id,
			"error":      err.Error(),
		}).Warn("Failed to bump memory access counter")
	}
	m.AccessCount++
	m.LastAccessedAt = time.Now().UTC()

	return m, nil
}

// UpdateMemory merges the provided fields into the stored memory; nil
// fields keep their current values.
func (s *memoryService) UpdateMemory(ctx context.Context, req memory.UpdateMemoryRequest) (entity.Memory, error) {
	repo, err := s.memoryRepository.NewClient(false)
	if err != nil {
		return entity.Memory{}, err
	}

	m, err := repo.Memory.GetByID(ctx, req.ID)
	if err != nil {
		return entity.Memory{}, err
	}

	if req.Category != nil {
		if !memory.ValidCategories[*req.Category] {
			return entity.Memory{}, memory.ErrInvalidCategory
		}
		m.Category = *req.Category
	}
	if req.Importance != nil {
		importance := entity.ImportanceLevel(*req.Importance)
		if _, ok := entity.ImportanceWeights[importance]; !ok {
			return entity.Memory{}, memory.ErrInvalidImportance
		}
		m.Importance = importance
	}
	if req.Content != nil {
		m.Content = *req.Content
	}
	if req.Summary != nil {
		m.Summary = *req.Summary
	}
	if req.Tags != nil {
		m.Tags = normalizeTags(*req.Tags)
	}
	if req.ExpiresAt != nil {
		m.ExpiresAt = req.ExpiresAt
	}

	if err := repo.Memory.Update(ctx, m); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"memory_id":  req.ID,
			"error":      err.Error(),
		}).Error("Failed to update memory")
		return entity.Memory{}, err
	}

	m.UpdatedAt = time.Now().UTC()
	return m, nil
}

func (s *memoryService) ArchiveMemory(ctx context.Context, id string) error {
	repo, err := s.memoryRepository.NewClient(false)
	if err != nil {
		return err
	}
	return repo.Memory.Archive(ctx, id)
}

func (s *memoryService) QueryMemories(ctx context.Context, req memory.QueryMemoriesRequest) ([]entity.Memory, error) {
	for _, category := range req.Categories {
		if !memory.ValidCategories[category] {
			return nil, memory.ErrInvalidCategory
		}
	}
	if req.MinImportance != "" {
		if _, ok := entity.ImportanceWeights[entity.ImportanceLevel(req.MinImportance)]; !ok {
			return nil, memory.ErrInvalidImportance
		}
	}
	if req.SortBy != "" {
		switch req.SortBy {
		case "createdAt", "updatedAt", "lastAccessedAt", "importance":
		default:
			return nil, memory.ErrInvalidSortField
		}
	}

	repo, err := s.memoryRepository.NewClient(false)
	if err != nil {
		return nil, err
	}
	return repo.Memory.Query(ctx, req)
}

// CleanupExpired archives expired non-critical memories. Nothing is ever
// deleted; archived rows stay queryable through direct Get.
func (s *memoryService) CleanupExpired(ctx context.Context) (int64, error) {
	repo, err := s.memoryRepository.NewClient(false)
	if err != nil {
		return 0, err
	}

	count, err := repo.Memory.ArchiveExpired(ctx, time.Now().UTC())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Expired-memory cleanup failed")
		return 0, err
	}

	if count > 0 {
		s.log.WithFields(logrus.Fields{
			"archived": count,
		}).Info("Archived expired memories")
	}
	return count, nil
}

// LinkMemories records the relation on both sides. Repeating the call is
// harmless; links are a set, not a list.
func (s *memoryService) LinkMemories(ctx context.Context, id, targetID string) error {
	if id == targetID {
		return memory.ErrSelfLink
	}

	repo, err := s.memoryRepository.NewClient(false)
	if err != nil {
		return err
	}

	if _, err := repo.Memory.GetByID(ctx, id); err != nil {
		return err
	}
	if _, err := repo.Memory.GetByID(ctx, targetID); err != nil {
		return err
	}

	if err := repo.Memory.AddLink(ctx, id, targetID); err != nil {
		return err
	}
	return repo.Memory.AddLink(ctx, targetID, id)
}

// GetRelated resolves neighbors through GetMemory so related reads count
// as accesses too.
func (s *memoryService) GetRelated(ctx context.Context, id string) ([]entity.Memory, error) {
	repo, err := s.memoryRepository.NewClient(false)
	if err != nil {
		return nil, err
	}

	m, err := repo.Memory.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	related := make([]entity.Memory, 0, len(m.RelatedMemoryIDs))
	for _, relatedID := range m.RelatedMemoryIDs {
		neighbor, err := s.GetMemory(ctx, relatedID)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"memory_id":  id,
				"related_id": relatedID,
			}).Warn("Skipping unresolvable related memory")
			continue
		}
		related = append(related, neighbor)
	}

	return related, nil
}

func (s *memoryService) ObservePattern(ctx context.Context, userID, kind, description string, confidence float64) error {
	repo, err := s.memoryRepository.NewClient(false)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return err
	}

	return repo.Pattern.Upsert(ctx, entity.Pattern{
		ID:           id,
		UserID:       userID,
		Kind:         kind,
		Description:  description,
		Confidence:   confidence,
		LastObserved: now,
		CreatedAt:    now,
	})
}

func (s *memoryService) CreateGoal(ctx context.Context, userID, description string, targetDate *time.Time) (entity.Goal, error) {
	repo, err := s.memoryRepository.NewClient(false)
	if err != nil {
		return entity.Goal{}, err
	}

	now := time.Now().UTC()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return entity.Goal{}, err
	}

	g := entity.Goal{
		ID:          id,
		UserID:      userID,
		Description: description,
		Status:      entity.GoalActive,
		TargetDate:  targetDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := repo.Goal.Create(ctx, g); err != nil {
		return entity.Goal{}, err
	}
	return g, nil
}

func (s *memoryService) ListActiveGoals(ctx context.Context, userID string) ([]entity.Goal, error) {
	repo, err := s.memoryRepository.NewClient(false)
	if err != nil {
		return nil, err
	}
	return repo.Goal.ListByUser(ctx, userID, entity.GoalActive)
}

func (s *memoryService) UpdateGoalStatus(ctx context.Context, id string, status entity.GoalStatus) error {
	repo, err := s.memoryRepository.NewClient(false)
	if err != nil {
		return err
	}
	return repo.Goal.UpdateStatus(ctx, id, status)
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
