package memoryRepository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"AssistantGolang/internal/api/memory"
	"AssistantGolang/internal/entity"
)

// NewInMemory returns a map-backed Repository with the same filter
// semantics as the Postgres one. Unit tests inject it in place of a
// database; transactions degrade to no-ops.
func NewInMemory() Repository {
	store := &inMemoryStore{
		memories: make(map[string]entity.Memory),
		patterns: make(map[string]entity.Pattern),
		goals:    make(map[string]entity.Goal),
	}
	return &inMemoryRepository{store: store}
}

type inMemoryStore struct {
	mu       sync.RWMutex
	memories map[string]entity.Memory
	patterns map[string]entity.Pattern
	goals    map[string]entity.Goal
}

type inMemoryRepository struct {
	store *inMemoryStore
}

func (r *inMemoryRepository) NewClient(tx bool) (Client, error) {
	return Client{
		Memory:   &inMemoryMemoryRepo{store: r.store},
		Pattern:  &inMemoryPatternRepo{store: r.store},
		Goal:     &inMemoryGoalRepo{store: r.store},
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

type inMemoryMemoryRepo struct {
	store *inMemoryStore
}

func (r *inMemoryMemoryRepo) Create(_ context.Context, m entity.Memory) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.memories[m.ID] = m
	return nil
}

func (r *inMemoryMemoryRepo) GetByID(_ context.Context, id string) (entity.Memory, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.memories[id]
	if !ok {
		return entity.Memory{}, memory.ErrMemoryNotFound
	}
	return m, nil
}

func (r *inMemoryMemoryRepo) Update(_ context.Context, m entity.Memory) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.memories[m.ID]
	if !ok {
		return memory.ErrMemoryNotFound
	}

	existing.Category = m.Category
	existing.Importance = m.Importance
	existing.Content = m.Content
	existing.Summary = m.Summary
	existing.Tags = m.Tags
	existing.ExpiresAt = m.ExpiresAt
	existing.UpdatedAt = time.Now().UTC()
	r.store.memories[m.ID] = existing
	return nil
}

func (r *inMemoryMemoryRepo) Archive(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m, ok := r.store.memories[id]
	if !ok {
		return memory.ErrMemoryNotFound
	}
	m.IsArchived = true
	m.UpdatedAt = time.Now().UTC()
	r.store.memories[id] = m
	return nil
}

func (r *inMemoryMemoryRepo) TouchAccess(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m, ok := r.store.memories[id]
	if !ok {
		return nil
	}
	m.AccessCount++
	m.LastAccessedAt = time.Now().UTC()
	r.store.memories[id] = m
	return nil
}

func (r *inMemoryMemoryRepo) ArchiveExpired(_ context.Context, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var count int64
	for id, m := range r.store.memories {
		if m.IsArchived || m.ExpiresAt == nil || m.Importance == entity.ImportanceCritical {
			continue
		}
		if m.ExpiresAt.Before(now) {
			m.IsArchived = true
			m.UpdatedAt = now
			r.store.memories[id] = m
			count++
		}
	}
	return count, nil
}

func (r *inMemoryMemoryRepo) AddLink(_ context.Context, id string, relatedID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m, ok := r.store.memories[id]
	if !ok {
		return memory.ErrMemoryNotFound
	}
	for _, existing := range m.RelatedMemoryIDs {
		if existing == relatedID {
			return nil
		}
	}
	m.RelatedMemoryIDs = append(m.RelatedMemoryIDs, relatedID)
	m.UpdatedAt = time.Now().UTC()
	r.store.memories[id] = m
	return nil
}

func (r *inMemoryMemoryRepo) Query(_ context.Context, req memory.QueryMemoriesRequest) ([]entity.Memory, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []entity.Memory
	for _, m := range r.store.memories {
		if m.UserID != req.UserID || m.IsArchived {
			continue
		}
		if len(req.Categories) > 0 && !containsString(req.Categories, m.Category) {
			continue
		}
		if req.MinImportance != "" &&
			m.Importance.Weight() < entity.ImportanceLevel(req.MinImportance).Weight() {
			continue
		}
		if len(req.Tags) > 0 && !anyTagOverlap(req.Tags, m.Tags) {
			continue
		}
		if req.Search != "" && !matchesSearch(m, req.Search) {
			continue
		}
		if req.CreatedAfter != nil && m.CreatedAt.Before(*req.CreatedAfter) {
			continue
		}
		if req.CreatedBefore != nil && m.CreatedAt.After(*req.CreatedBefore) {
			continue
		}
		matched = append(matched, m)
	}

	sortMemories(matched, req.SortBy, req.SortDesc)

	if req.Offset >= len(matched) {
		return []entity.Memory{}, nil
	}
	matched = matched[req.Offset:]

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

func sortMemories(memories []entity.Memory, sortBy string, desc bool) {
	less := func(a, b entity.Memory) bool {
		switch sortBy {
		case "updatedAt":
			return a.UpdatedAt.Before(b.UpdatedAt)
		case "lastAccessedAt":
			return a.LastAccessedAt.Before(b.LastAccessedAt)
		case "importance":
			return a.Importance.Weight() < b.Importance.Weight()
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}

	sort.SliceStable(memories, func(i, j int) bool {
		if desc {
			return less(memories[j], memories[i])
		}
		return less(memories[i], memories[j])
	})
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func anyTagOverlap(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

func matchesSearch(m entity.Memory, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(m.Content), needle) ||
		strings.Contains(strings.ToLower(m.Summary), needle)
}

type inMemoryPatternRepo struct {
	store *inMemoryStore
}

func (r *inMemoryPatternRepo) Upsert(_ context.Context, p entity.Pattern) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, existing := range r.store.patterns {
		if existing.UserID == p.UserID && existing.Kind == p.Kind && existing.Description == p.Description {
			existing.Occurrences++
			existing.Confidence = p.Confidence
			existing.LastObserved = p.LastObserved
			r.store.patterns[id] = existing
			return nil
		}
	}

	p.Occurrences = 1
	r.store.patterns[p.ID] = p
	return nil
}

func (r *inMemoryPatternRepo) ListByUser(_ context.Context, userID string) ([]entity.Pattern, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var patterns []entity.Pattern
	for _, p := range r.store.patterns {
		if p.UserID == userID {
			patterns = append(patterns, p)
		}
	}
	sort.Slice(patterns, func(i, j int) bool {
		return patterns[i].Occurrences > patterns[j].Occurrences
	})
	return patterns, nil
}

type inMemoryGoalRepo struct {
	store *inMemoryStore
}

func (r *inMemoryGoalRepo) Create(_ context.Context, g entity.Goal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.goals[g.ID] = g
	return nil
}

func (r *inMemoryGoalRepo) ListByUser(_ context.Context, userID string, status entity.GoalStatus) ([]entity.Goal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var goals []entity.Goal
	for _, g := range r.store.goals {
		if g.UserID == userID && g.Status == status {
			goals = append(goals, g)
		}
	}
	sort.Slice(goals, func(i, j int) bool {
		return goals[i].CreatedAt.After(goals[j].CreatedAt)
	})
	return goals, nil
}

func (r *inMemoryGoalRepo) UpdateStatus(_ context.Context, id string, status entity.GoalStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	g, ok := r.store.goals[id]
	if !ok {
		return memory.ErrGoalNotFound
	}
	g.Status = status
	g.UpdatedAt = time.Now().UTC()
	r.store.goals[id] = g
	return nil
}
