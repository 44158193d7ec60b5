package assistantRepository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"AssistantGolang/internal/entity"
	bcryptPkg "AssistantGolang/pkg/bcrypt"
	redisPkg "AssistantGolang/pkg/redis"
	"AssistantGolang/pkg/utils"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	mu       sync.Mutex
	values   map[string]string
	expireAt map[string]time.Time
	lists    map[string][]string
	maxLens  map[string]int64
	getErr   error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		values:   make(map[string]string),
		expireAt: make(map[string]time.Time),
		lists:    make(map[string][]string),
		maxLens:  make(map[string]int64),
	}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return "", f.getErr
	}

	v, ok := f.values[key]
	if !ok {
		return "", redisPkg.ErrNotFound
	}
	if exp, has := f.expireAt[key]; has && time.Now().After(exp) {
		delete(f.values, key)
		delete(f.expireAt, key)
		return "", redisPkg.ErrNotFound
	}
	return v, nil
}

func (f *fakeCache) SetWithTTL(_ context.Context, key, value string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[key] = value
	if expiration > 0 {
		f.expireAt[key] = time.Now().Add(expiration)
	}
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.values, key)
	delete(f.expireAt, key)
	delete(f.lists, key)
	return nil
}

func (f *fakeCache) PushToList(_ context.Context, key, value string, maxLen int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lists[key] = append([]string{value}, f.lists[key]...)
	f.maxLens[key] = maxLen
	if maxLen > 0 && int64(len(f.lists[key])) > maxLen {
		f.lists[key] = f.lists[key][:maxLen]
	}
	return nil
}

func (f *fakeCache) GetList(_ context.Context, key string, limit int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.lists[key]
	if limit > 0 && int64(len(list)) > limit {
		list = list[:limit]
	}
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

func (f *fakeCache) ScanKeys(_ context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var keys []string
	for k := range f.lists {
		keys = append(keys, k)
	}
	return keys, nil
}

func newTestClient(cache redisPkg.IRedis, sessionTimeout, codeTTL time.Duration) Client {
	logger := logrus.New()
	return New(cache, bcryptPkg.NewWithCost(4), utils.New(), logger, sessionTimeout, codeTTL)
}

func TestGetOrCreateReturnsFreshStateWhenAbsent(t *testing.T) {
	repo := newTestClient(newFakeCache(), 0, 0)

	state, err := repo.Session.GetOrCreate(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", state.UserID)
	assert.NotEmpty(t, state.ThreadID)
	assert.Equal(t, entity.ConversationActive, state.Status)
	assert.Zero(t, state.TurnCount)
	assert.NotNil(t, state.CollectedEntities)
	assert.NotNil(t, state.Context)
	assert.Nil(t, state.PendingApproval)
}

func TestGetOrCreateFailsOpenOnReadError(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")
	repo := newTestClient(cache, 0, 0)

	state, err := repo.Session.GetOrCreate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", state.UserID)
	assert.Equal(t, entity.ConversationActive, state.Status)
}

func TestGetOrCreateRecoversFromCorruptDocument(t *testing.T) {
	cache := newFakeCache()
	cache.values[sessionKey("user-1")] = "{not json"
	repo := newTestClient(cache, 0, 0)

	state, err := repo.Session.GetOrCreate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ConversationActive, state.Status)
	assert.Zero(t, state.TurnCount)
}

func TestUpdateMaintainsTTLInvariant(t *testing.T) {
	timeout := 600 * time.Second
	repo := newTestClient(newFakeCache(), timeout, 0)
	ctx := context.Background()

	state, err := repo.Session.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		state.TurnCount++
		require.NoError(t, repo.Session.Update(ctx, &state))
		assert.Equal(t, timeout, state.ExpiresAt.Sub(state.LastMessageAt))
	}
}

func TestUpdateRoundTripsState(t *testing.T) {
	repo := newTestClient(newFakeCache(), 0, 0)
	ctx := context.Background()

	state, err := repo.Session.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)

	state.ActiveIntent = "REMIND"
	state.Status = entity.ConversationWaiting
	state.MissingEntities = []string{"time"}
	state.PendingApproval = &entity.PendingToolApproval{
		ToolName:    "run_script",
		Args:        map[string]string{"script": "ls"},
		RequestedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Session.Update(ctx, &state))

	loaded, err := repo.Session.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "REMIND", loaded.ActiveIntent)
	assert.Equal(t, entity.ConversationWaiting, loaded.Status)
	assert.Equal(t, []string{"time"}, loaded.MissingEntities)
	require.NotNil(t, loaded.PendingApproval)
	assert.Equal(t, "run_script", loaded.PendingApproval.ToolName)
}

// Two writers racing on the same session: no locking is attempted, the
// second write fully replaces the first.
func TestUpdateLastWriteWins(t *testing.T) {
	repo := newTestClient(newFakeCache(), 0, 0)
	ctx := context.Background()

	first, err := repo.Session.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	second := first

	first.ActiveIntent = "REMIND"
	first.TurnCount = 5
	require.NoError(t, repo.Session.Update(ctx, &first))

	second.ActiveIntent = "GOAL"
	second.TurnCount = 1
	require.NoError(t, repo.Session.Update(ctx, &second))

	loaded, err := repo.Session.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "GOAL", loaded.ActiveIntent)
	assert.Equal(t, 1, loaded.TurnCount)
}

func TestClearRemovesSession(t *testing.T) {
	repo := newTestClient(newFakeCache(), 0, 0)
	ctx := context.Background()

	state, err := repo.Session.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	state.TurnCount = 7
	require.NoError(t, repo.Session.Update(ctx, &state))
	require.NoError(t, repo.Session.Clear(ctx, "user-1"))

	fresh, err := repo.Session.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, fresh.TurnCount)
}

func TestHistoryKeepsNewestFifty(t *testing.T) {
	cache := newFakeCache()
	repo := newTestClient(cache, 0, 0)
	ctx := context.Background()

	for i := 0; i < 55; i++ {
		turn := entity.ConversationTurn{
			ID:        string(rune('a' + i%26)),
			UserID:    "user-1",
			Direction: entity.TurnInbound,
			Text:      "message",
			Timestamp: time.Now().UTC(),
		}
		require.NoError(t, repo.History.AddTurn(ctx, turn))
	}

	turns, err := repo.History.GetTurns(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, turns, 50)
	assert.EqualValues(t, 50, cache.maxLens[turnKey("user-1")])
}

func TestVerifyCodeMatchAndMismatch(t *testing.T) {
	repo := newTestClient(newFakeCache(), 0, 0)
	ctx := context.Background()

	require.NoError(t, repo.Approval.StoreCode(ctx, "user-1", "042137"))

	ok, err := repo.Approval.VerifyCode(ctx, "user-1", "042137")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Approval.VerifyCode(ctx, "user-1", "000000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyCodeMissingReportsNotFound(t *testing.T) {
	repo := newTestClient(newFakeCache(), 0, 0)

	ok, err := repo.Approval.VerifyCode(context.Background(), "user-1", "123456")
	assert.False(t, ok)
	assert.ErrorIs(t, err, redisPkg.ErrNotFound)
}

func TestStoredCodeIsNotPlaintext(t *testing.T) {
	cache := newFakeCache()
	repo := newTestClient(cache, 0, 0)

	require.NoError(t, repo.Approval.StoreCode(context.Background(), "user-1", "042137"))
	assert.NotContains(t, cache.values[approvalKey("user-1")], "042137")
}

func TestIdleSessionEvictsToFreshState(t *testing.T) {
	repo := newTestClient(newFakeCache(), 20*time.Millisecond, 0)
	ctx := context.Background()

	state, err := repo.Session.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	state.TurnCount = 7
	require.NoError(t, repo.Session.Update(ctx, &state))

	time.Sleep(40 * time.Millisecond)

	fresh, err := repo.Session.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, fresh.TurnCount)
	assert.NotEqual(t, state.ThreadID, fresh.ThreadID)
}
