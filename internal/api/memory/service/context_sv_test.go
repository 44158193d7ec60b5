package memoryService

import (
	"context"
	"io"
	"testing"
	"time"

	"AssistantGolang/internal/api/memory"
	memoryRepository "AssistantGolang/internal/api/memory/repository"
	"AssistantGolang/internal/entity"
	redisPkg "AssistantGolang/pkg/redis"
	"AssistantGolang/pkg/utils"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCache struct {
	values map[string]string
}

func newStubCache() *stubCache {
	return &stubCache{values: make(map[string]string)}
}

func (s *stubCache) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", redisPkg.ErrNotFound
	}
	return v, nil
}

func (s *stubCache) SetWithTTL(_ context.Context, key, value string, _ time.Duration) error {
	s.values[key] = value
	return nil
}

func (s *stubCache) Delete(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func (s *stubCache) PushToList(_ context.Context, _, _ string, _ int64) error { return nil }

func (s *stubCache) GetList(_ context.Context, _ string, _ int64) ([]string, error) {
	return nil, nil
}

func (s *stubCache) ScanKeys(_ context.Context, _ string) ([]string, error) { return nil, nil }

func newContextFixture(t *testing.T) (IContextService, IMemoryService) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	repo := memoryRepository.NewInMemory()
	memSvc := NewMemoryService(logger, repo, utils.New())
	ctxSvc := NewContextService(logger, repo, newStubCache(), DefaultRankingPolicy())
	return ctxSvc, memSvc
}

func TestBuildContextScoresWithinUnitInterval(t *testing.T) {
	ctxSvc, memSvc := newContextFixture(t)
	ctx := context.Background()

	for _, imp := range []string{"critical", "high", "medium", "low", "temporary"} {
		_, err := memSvc.CreateMemory(ctx, memory.CreateMemoryRequest{
			UserID:     "user-1",
			Category:   "personal",
			Importance: imp,
			Content:    "fact with importance " + imp,
		})
		require.NoError(t, err)
	}

	items, err := ctxSvc.BuildContext(ctx, "user-1", nil)
	require.NoError(t, err)
	require.NotEmpty(t, items)

	for _, item := range items {
		assert.GreaterOrEqual(t, item.RelevanceScore, 0.0)
		assert.LessOrEqual(t, item.RelevanceScore, 1.0)
	}

	for i := 1; i < len(items); i++ {
		assert.GreaterOrEqual(t, items[i-1].RelevanceScore, items[i].RelevanceScore)
	}
}

func TestBuildContextFloorsCriticalAndNowItems(t *testing.T) {
	ctxSvc, memSvc := newContextFixture(t)
	ctx := context.Background()

	_, err := memSvc.CreateMemory(ctx, memory.CreateMemoryRequest{
		UserID:     "user-1",
		Category:   "personal",
		Importance: "critical",
		Content:    "allergic to penicillin",
	})
	require.NoError(t, err)

	items, err := ctxSvc.BuildContext(ctx, "user-1", nil)
	require.NoError(t, err)
	require.NotEmpty(t, items)

	for _, item := range items {
		if item.TimeWindow == entity.WindowNow {
			assert.Contains(t,
				[]entity.RelevanceLevel{entity.RelevanceCritical, entity.RelevanceHigh},
				item.Relevance)
		}
	}
}

func TestBuildContextTagOverlapRaisesScore(t *testing.T) {
	ctxSvc, memSvc := newContextFixture(t)
	ctx := context.Background()

	tagged, err := memSvc.CreateMemory(ctx, memory.CreateMemoryRequest{
		UserID:   "user-1",
		Category: "personal",
		Content:  "mom's number is saved",
		Tags:     []string{"call mom"},
	})
	require.NoError(t, err)

	_, err = memSvc.CreateMemory(ctx, memory.CreateMemoryRequest{
		UserID:   "user-1",
		Category: "personal",
		Content:  "unrelated fact",
	})
	require.NoError(t, err)

	entities := []entity.ExtractedEntity{{Type: "task", Value: "call mom"}}
	items, err := ctxSvc.BuildContext(ctx, "user-1", entities)
	require.NoError(t, err)
	require.NotEmpty(t, items)

	assert.Equal(t, tagged.ID, items[0].Metadata["memory_id"])
}

func TestBuildContextExcludesArchivedMemories(t *testing.T) {
	ctxSvc, memSvc := newContextFixture(t)
	ctx := context.Background()

	archived, err := memSvc.CreateMemory(ctx, memory.CreateMemoryRequest{
		UserID:   "user-1",
		Category: "personal",
		Content:  "old stuff",
	})
	require.NoError(t, err)
	require.NoError(t, memSvc.ArchiveMemory(ctx, archived.ID))

	items, err := ctxSvc.BuildContext(ctx, "user-1", nil)
	require.NoError(t, err)

	for _, item := range items {
		assert.NotEqual(t, archived.ID, item.Metadata["memory_id"])
	}
}

func TestBuildContextBoundedByPolicy(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	repo := memoryRepository.NewInMemory()
	memSvc := NewMemoryService(logger, repo, utils.New())

	policy := DefaultRankingPolicy()
	policy.MaxItems = 3
	policy.CacheTTL = 0
	ctxSvc := NewContextService(logger, repo, newStubCache(), policy)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, err := memSvc.CreateMemory(ctx, memory.CreateMemoryRequest{
			UserID:   "user-1",
			Category: "personal",
			Content:  "fact",
		})
		require.NoError(t, err)
	}

	items, err := ctxSvc.BuildContext(ctx, "user-1", nil)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestFormatBundlePrefixesCategory(t *testing.T) {
	ctxSvc, memSvc := newContextFixture(t)
	ctx := context.Background()

	_, err := memSvc.CreateMemory(ctx, memory.CreateMemoryRequest{
		UserID:   "user-1",
		Category: "preference",
		Content:  "prefers tea over coffee",
	})
	require.NoError(t, err)

	items, err := ctxSvc.BuildContext(ctx, "user-1", nil)
	require.NoError(t, err)

	lines := ctxSvc.FormatBundle(items)
	require.NotEmpty(t, lines)
	assert.Equal(t, "[preference] prefers tea over coffee", lines[0])
}
