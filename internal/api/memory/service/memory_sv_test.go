package memoryService

import (
	"context"
	"io"
	"testing"
	"time"

	"AssistantGolang/internal/api/memory"
	memoryRepository "AssistantGolang/internal/api/memory/repository"
	"AssistantGolang/internal/entity"
	"AssistantGolang/pkg/utils"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (IMemoryService, memoryRepository.Repository) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	repo := memoryRepository.NewInMemory()
	return NewMemoryService(logger, repo, utils.New()), repo
}

func createMemory(t *testing.T, svc IMemoryService, req memory.CreateMemoryRequest) entity.Memory {
	t.Helper()
	if req.UserID == "" {
		req.UserID = "user-1"
	}
	if req.Category == "" {
		req.Category = "personal"
	}
	if req.Content == "" {
		req.Content = "some fact"
	}
	m, err := svc.CreateMemory(context.Background(), req)
	require.NoError(t, err)
	return m
}

func TestCreateMemoryDefaultsToMediumImportance(t *testing.T) {
	svc, _ := newTestService(t)

	m := createMemory(t, svc, memory.CreateMemoryRequest{Content: "likes green tea"})
	assert.Equal(t, entity.ImportanceMedium, m.Importance)
	assert.False(t, m.IsArchived)
	assert.Zero(t, m.AccessCount)
}

func TestCreateMemoryRejectsUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateMemory(context.Background(), memory.CreateMemoryRequest{
		UserID:   "user-1",
		Category: "gossip",
		Content:  "x",
	})
	assert.ErrorIs(t, err, memory.ErrInvalidCategory)
}

func TestGetMemoryBumpsAccessCount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	m := createMemory(t, svc, memory.CreateMemoryRequest{})

	first, err := svc.GetMemory(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.AccessCount)

	second, err := svc.GetMemory(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.AccessCount)
}

func TestUpdateMemoryMergesOnlyProvidedFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	m := createMemory(t, svc, memory.CreateMemoryRequest{
		Content:    "drinks coffee at 8am",
		Summary:    "morning coffee",
		Importance: "high",
		Tags:       []string{"coffee"},
	})

	newContent := "drinks coffee at 7am"
	updated, err := svc.UpdateMemory(ctx, memory.UpdateMemoryRequest{
		ID:      m.ID,
		Content: &newContent,
	})
	require.NoError(t, err)

	assert.Equal(t, "drinks coffee at 7am", updated.Content)
	assert.Equal(t, "morning coffee", updated.Summary)
	assert.Equal(t, entity.ImportanceHigh, updated.Importance)
	assert.Equal(t, []string{"coffee"}, updated.Tags)
}

func TestArchivedMemoriesAreExcludedFromQueries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	keep := createMemory(t, svc, memory.CreateMemoryRequest{Content: "keep me"})
	gone := createMemory(t, svc, memory.CreateMemoryRequest{Content: "archive me"})

	require.NoError(t, svc.ArchiveMemory(ctx, gone.ID))

	results, err := svc.QueryMemories(ctx, memory.QueryMemoriesRequest{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, keep.ID, results[0].ID)

	// Archived memories stay readable through direct Get.
	archived, err := svc.GetMemory(ctx, gone.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
}

func TestQueryFiltersByMinImportanceAndTags(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	createMemory(t, svc, memory.CreateMemoryRequest{Content: "low", Importance: "low", Tags: []string{"work"}})
	high := createMemory(t, svc, memory.CreateMemoryRequest{Content: "high", Importance: "high", Tags: []string{"work"}})
	createMemory(t, svc, memory.CreateMemoryRequest{Content: "other", Importance: "high", Tags: []string{"home"}})

	results, err := svc.QueryMemories(ctx, memory.QueryMemoriesRequest{
		UserID:        "user-1",
		MinImportance: "medium",
		Tags:          []string{"work"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, high.ID, results[0].ID)
}

func TestQueryCaseInsensitiveSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	m := createMemory(t, svc, memory.CreateMemoryRequest{Content: "Prefers Oat Milk in coffee"})
	createMemory(t, svc, memory.CreateMemoryRequest{Content: "unrelated"})

	results, err := svc.QueryMemories(ctx, memory.QueryMemoriesRequest{
		UserID: "user-1",
		Search: "oat milk",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, m.ID, results[0].ID)
}

func TestQueryRejectsInvalidSortField(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.QueryMemories(context.Background(), memory.QueryMemoriesRequest{
		UserID: "user-1",
		SortBy: "accessCount",
	})
	assert.ErrorIs(t, err, memory.ErrInvalidSortField)
}

func TestCleanupExpiredArchivesNonCriticalOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour)
	expired := createMemory(t, svc, memory.CreateMemoryRequest{Content: "stale", ExpiresAt: &past})
	critical := createMemory(t, svc, memory.CreateMemoryRequest{
		Content:    "allergy to penicillin",
		Importance: "critical",
		ExpiresAt:  &past,
	})
	fresh := createMemory(t, svc, memory.CreateMemoryRequest{Content: "current"})

	count, err := svc.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	got, err := svc.GetMemory(ctx, expired.ID)
	require.NoError(t, err)
	assert.True(t, got.IsArchived)

	got, err = svc.GetMemory(ctx, critical.ID)
	require.NoError(t, err)
	assert.False(t, got.IsArchived)

	got, err = svc.GetMemory(ctx, fresh.ID)
	require.NoError(t, err)
	assert.False(t, got.IsArchived)
}

func TestLinkMemoriesIsSymmetricAndIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := createMemory(t, svc, memory.CreateMemoryRequest{Content: "a"})
	b := createMemory(t, svc, memory.CreateMemoryRequest{Content: "b"})

	require.NoError(t, svc.LinkMemories(ctx, a.ID, b.ID))
	require.NoError(t, svc.LinkMemories(ctx, a.ID, b.ID))
	require.NoError(t, svc.LinkMemories(ctx, b.ID, a.ID))

	gotA, err := svc.GetMemory(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, gotA.RelatedMemoryIDs)

	gotB, err := svc.GetMemory(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, gotB.RelatedMemoryIDs)
}

func TestLinkMemoriesRejectsSelfLink(t *testing.T) {
	svc, _ := newTestService(t)

	a := createMemory(t, svc, memory.CreateMemoryRequest{Content: "a"})
	assert.ErrorIs(t, svc.LinkMemories(context.Background(), a.ID, a.ID), memory.ErrSelfLink)
}

func TestGetRelatedBumpsNeighborAccess(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := createMemory(t, svc, memory.CreateMemoryRequest{Content: "a"})
	b := createMemory(t, svc, memory.CreateMemoryRequest{Content: "b"})
	require.NoError(t, svc.LinkMemories(ctx, a.ID, b.ID))

	related, err := svc.GetRelated(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, b.ID, related[0].ID)
	assert.Equal(t, 1, related[0].AccessCount)
}

func TestImportancePromoteDemoteClamps(t *testing.T) {
	assert.Equal(t, entity.ImportanceCritical, entity.ImportanceCritical.Promote())
	assert.Equal(t, entity.ImportanceTemporary, entity.ImportanceTemporary.Demote())
	assert.Equal(t, entity.ImportanceHigh, entity.ImportanceMedium.Promote())
	assert.Equal(t, entity.ImportanceLow, entity.ImportanceMedium.Demote())
}

func TestGoalLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	g, err := svc.CreateGoal(ctx, "user-1", "run a marathon", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.GoalActive, g.Status)

	goals, err := svc.ListActiveGoals(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, goals, 1)

	require.NoError(t, svc.UpdateGoalStatus(ctx, g.ID, entity.GoalCompleted))

	goals, err = svc.ListActiveGoals(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, goals)
}
