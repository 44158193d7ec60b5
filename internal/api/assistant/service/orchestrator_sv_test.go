package assistantService

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"AssistantGolang/internal/api/assistant"
	assistantRepository "AssistantGolang/internal/api/assistant/repository"
	memoryRepository "AssistantGolang/internal/api/memory/repository"
	memoryService "AssistantGolang/internal/api/memory/service"
	reminderRepository "AssistantGolang/internal/api/reminder/repository"
	reminderService "AssistantGolang/internal/api/reminder/service"
	"AssistantGolang/internal/entity"
	"AssistantGolang/internal/tool"
	"AssistantGolang/pkg/nlp"
	redisPkg "AssistantGolang/pkg/redis"
	"AssistantGolang/pkg/utils"
	"AssistantGolang/pkg/whatsapp"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	netctx "golang.org/x/net/context"
)

const testUserID = "user-1"

type fakeSessionRepo struct {
	mu     sync.Mutex
	states map[string]entity.ConversationState
}

func (f *fakeSessionRepo) GetOrCreate(_ netctx.Context, userID string) (entity.ConversationState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if state, ok := f.states[userID]; ok {
		return state, nil
	}
	now := time.Now()
	state := entity.ConversationState{
		UserID:        userID,
		ThreadID:      "thread-1",
		Status:        entity.ConversationActive,
		Context:       map[string]interface{}{},
		LastMessageAt: now,
		ExpiresAt:     now.Add(600 * time.Second),
	}
	f.states[userID] = state
	return state, nil
}

func (f *fakeSessionRepo) Update(_ netctx.Context, state *entity.ConversationState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	state.LastMessageAt = now
	state.ExpiresAt = now.Add(600 * time.Second)
	f.states[state.UserID] = *state
	return nil
}

func (f *fakeSessionRepo) Clear(_ netctx.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.states, userID)
	return nil
}

func (f *fakeSessionRepo) Timeout() time.Duration { return 600 * time.Second }

func (f *fakeSessionRepo) state(userID string) entity.ConversationState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.states[userID]
}

type fakeHistoryRepo struct {
	mu    sync.Mutex
	turns map[string][]entity.ConversationTurn
}

func (f *fakeHistoryRepo) AddTurn(_ netctx.Context, turn entity.ConversationTurn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns[turn.UserID] = append(f.turns[turn.UserID], turn)
	return nil
}

func (f *fakeHistoryRepo) GetTurns(_ netctx.Context, userID string, _ int64) ([]entity.ConversationTurn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.ConversationTurn(nil), f.turns[userID]...), nil
}

func (f *fakeHistoryRepo) ActiveUserIDs(_ netctx.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]string, 0, len(f.turns))
	for id := range f.turns {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeApprovalRepo struct {
	mu    sync.Mutex
	codes map[string]string
}

func (f *fakeApprovalRepo) StoreCode(_ netctx.Context, userID, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[userID] = code
	return nil
}

func (f *fakeApprovalRepo) VerifyCode(_ netctx.Context, userID, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.codes[userID]
	if !ok {
		return false, redisPkg.ErrNotFound
	}
	return stored == code, nil
}

func (f *fakeApprovalRepo) ClearCode(_ netctx.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.codes, userID)
	return nil
}

func (f *fakeApprovalRepo) code(userID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[userID]
}

func (f *fakeApprovalRepo) expire(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.codes, userID)
}

type fakeMessageSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeMessageSender) SendMessage(_ context.Context, _ string, body string) (whatsapp.DeliveryReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, body)
	return whatsapp.DeliveryReceipt{Status: whatsapp.DeliveryAccepted, ProviderID: "msg-1"}, nil
}

func (f *fakeMessageSender) Disconnect() error { return nil }
func (f *fakeMessageSender) IsConnected() bool { return true }

func (f *fakeMessageSender) lastSent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type fakeVoiceCaller struct{}

func (fakeVoiceCaller) TriggerAlarm(_ context.Context, _, _, _ string) bool { return true }

type fakeGemini struct{}

func (fakeGemini) GenerateReply(_ context.Context, message string, _ []string) (string, error) {
	return "chat: " + message, nil
}

func (fakeGemini) AnalyzeImage(_ context.Context, _, _ string) (string, error) {
	return "a code editor", nil
}

type fakeCalendar struct{}

func (fakeCalendar) ListUpcoming(_ context.Context, _ int64) ([]entity.Event, error) {
	return []entity.Event{{Title: "Standup", StartsAt: time.Now().Add(time.Hour)}}, nil
}

func (fakeCalendar) CreateEvent(_ context.Context, title string, startsAt, endsAt time.Time) (entity.Event, error) {
	return entity.Event{Title: title, StartsAt: startsAt, EndsAt: endsAt}, nil
}

type fakeContextService struct{}

func (fakeContextService) BuildContext(_ netctx.Context, _ string, _ []entity.ExtractedEntity) ([]entity.ContextItem, error) {
	return nil, nil
}

func (fakeContextService) FormatBundle(_ []entity.ContextItem) []string { return nil }

type fakeStorage struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

func (f *fakeStorage) UploadTranscript(userID string, body []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[userID] = body
	return "s3://transcripts/" + userID, nil
}

func (f *fakeStorage) PresignUrl(key string) (string, error) { return "https://" + key, nil }
func (f *fakeStorage) DeleteObject(string) error             { return nil }

type recordingTool struct {
	mu        sync.Mutex
	name      string
	sensitive bool
	ran       []tool.ToolArgs
}

func (r *recordingTool) Name() string    { return r.name }
func (r *recordingTool) Sensitive() bool { return r.sensitive }

func (r *recordingTool) Execute(_ netctx.Context, args tool.ToolArgs, _ tool.ToolContext) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ran = append(r.ran, args)
	return "script done", nil
}

func (r *recordingTool) runCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ran)
}

type fixture struct {
	service   IAssistantService
	sessions  *fakeSessionRepo
	approvals *fakeApprovalRepo
	sender    *fakeMessageSender
	storage   *fakeStorage
	script    *recordingTool
	reminders reminderService.IReminderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	u := utils.New()

	sessions := &fakeSessionRepo{states: make(map[string]entity.ConversationState)}
	history := &fakeHistoryRepo{turns: make(map[string][]entity.ConversationTurn)}
	approvals := &fakeApprovalRepo{codes: make(map[string]string)}

	repo := assistantRepository.Client{
		Session:  sessions,
		History:  history,
		Approval: approvals,
	}

	memRepo := memoryRepository.NewInMemory()
	memSvc := memoryService.NewMemoryService(logger, memRepo, u)

	remRepo := reminderRepository.NewInMemory()
	remRepo.SeedUser(entity.User{ID: testUserID, PhoneNumber: "+15551230001"})
	sender := &fakeMessageSender{}
	remSvc := reminderService.NewReminderService(logger, remRepo, sender, fakeVoiceCaller{}, u)

	script := &recordingTool{name: "run_script", sensitive: true}
	registry := tool.NewRegistry(logger)
	registry.Register(tool.NewCalculator())
	registry.Register(script)

	remClient, err := remRepo.NewClient(false)
	require.NoError(t, err)

	storage := &fakeStorage{uploads: make(map[string][]byte)}

	svc := NewAssistantService(
		logger, repo, nlp.NewProcessor(), registry,
		memSvc, fakeContextService{}, remSvc,
		fakeGemini{}, fakeCalendar{}, sender,
		remClient.User, storage, u,
	)

	return &fixture{
		service:   svc,
		sessions:  sessions,
		approvals: approvals,
		sender:    sender,
		storage:   storage,
		script:    script,
		reminders: remSvc,
	}
}

func TestHandleMessageRejectsEmptyText(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.HandleMessage(context.Background(), testUserID, "   ")
	assert.ErrorIs(t, err, assistant.ErrEmptyMessage)
}

func TestRemindCreatesReminderFromOneMessage(t *testing.T) {
	f := newFixture(t)

	res, err := f.service.HandleMessage(context.Background(), testUserID, "remind me to call mom at 5pm")
	require.NoError(t, err)

	assert.Equal(t, nlp.IntentRemind, res.Intent)
	assert.Contains(t, res.Reply, "call mom")

	reminders, err := f.reminders.ListReminders(context.Background(), testUserID, nil)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "call mom", reminders[0].Message)
	assert.Equal(t, entity.ReminderPending, reminders[0].Status)
}

func TestRemindMissingTimeWaitsForAnswer(t *testing.T) {
	f := newFixture(t)

	res, err := f.service.HandleMessage(context.Background(), testUserID, "remind me to water the plants")
	require.NoError(t, err)
	assert.Equal(t, "When should I remind you?", res.Reply)

	state := f.sessions.state(testUserID)
	assert.Equal(t, entity.ConversationWaiting, state.Status)
	assert.Equal(t, nlp.IntentRemind, state.ActiveIntent)
	assert.Contains(t, state.MissingEntities, nlp.EntityTime)

	res, err = f.service.HandleMessage(context.Background(), testUserID, "at 6pm")
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "water the plants")

	reminders, err := f.reminders.ListReminders(context.Background(), testUserID, nil)
	require.NoError(t, err)
	require.Len(t, reminders, 1)

	state = f.sessions.state(testUserID)
	assert.Equal(t, entity.ConversationActive, state.Status)
	assert.Empty(t, state.ActiveIntent)
}

func TestCalcCommandDispatchesCalculator(t *testing.T) {
	f := newFixture(t)

	res, err := f.service.HandleMessage(context.Background(), testUserID, "/calc 50 * 4")
	require.NoError(t, err)

	assert.Equal(t, nlp.IntentCalculate, res.Intent)
	assert.Equal(t, "50 * 4 = 200", res.Reply)
}

func TestSensitiveToolWaitsForVerificationCode(t *testing.T) {
	f := newFixture(t)

	res, err := f.service.HandleMessage(context.Background(), testUserID, "run script: echo hi")
	require.NoError(t, err)

	assert.Contains(t, res.Reply, "6-digit code")
	assert.Zero(t, f.script.runCount())

	state := f.sessions.state(testUserID)
	require.NotNil(t, state.PendingApproval)
	assert.Equal(t, "run_script", state.PendingApproval.ToolName)

	code := f.approvals.code(testUserID)
	require.Len(t, code, 6)
	assert.Contains(t, f.sender.lastSent(), code)

	res, err = f.service.HandleMessage(context.Background(), testUserID, code)
	require.NoError(t, err)

	assert.Equal(t, "script done", res.Reply)
	assert.Equal(t, 1, f.script.runCount())
	assert.Nil(t, f.sessions.state(testUserID).PendingApproval)
	assert.Empty(t, f.approvals.code(testUserID))
}

func TestWrongCodeLeavesApprovalPending(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.HandleMessage(context.Background(), testUserID, "run script: echo hi")
	require.NoError(t, err)

	right := f.approvals.code(testUserID)
	wrong := "000000"
	if wrong == right {
		wrong = "000001"
	}

	res, err := f.service.HandleMessage(context.Background(), testUserID, wrong)
	require.NoError(t, err)

	assert.Contains(t, res.Reply, "doesn't match")
	assert.Zero(t, f.script.runCount())
	assert.NotNil(t, f.sessions.state(testUserID).PendingApproval)
	assert.Equal(t, right, f.approvals.code(testUserID))
}

func TestExpiredCodeDropsApproval(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.HandleMessage(context.Background(), testUserID, "run script: echo hi")
	require.NoError(t, err)

	f.approvals.expire(testUserID)

	res, err := f.service.HandleMessage(context.Background(), testUserID, "123456")
	require.NoError(t, err)

	assert.Contains(t, res.Reply, "expired")
	assert.Zero(t, f.script.runCount())
	assert.Nil(t, f.sessions.state(testUserID).PendingApproval)
}

func TestCancelDropsPendingApproval(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.HandleMessage(context.Background(), testUserID, "run script: echo hi")
	require.NoError(t, err)

	res, err := f.service.HandleMessage(context.Background(), testUserID, "cancel")
	require.NoError(t, err)

	assert.Equal(t, "Okay, I won't run that.", res.Reply)
	assert.Nil(t, f.sessions.state(testUserID).PendingApproval)
	assert.Empty(t, f.approvals.code(testUserID))
	assert.Zero(t, f.script.runCount())
}

func TestChatFallsBackToGenerativeReply(t *testing.T) {
	f := newFixture(t)

	res, err := f.service.HandleMessage(context.Background(), testUserID, "hello there")
	require.NoError(t, err)

	assert.Equal(t, nlp.IntentChat, res.Intent)
	assert.Equal(t, "chat: hello there", res.Reply)
}

func TestRememberThenRecall(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.HandleMessage(context.Background(), testUserID, "remember that my parking spot is on level 3")
	require.NoError(t, err)

	res, err := f.service.HandleMessage(context.Background(), testUserID, "what do you know about my parking spot")
	require.NoError(t, err)

	assert.Equal(t, nlp.IntentRecall, res.Intent)
	assert.Contains(t, res.Reply, "parking spot")
}

func TestTurnsAreRecordedBothDirections(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.HandleMessage(context.Background(), testUserID, "hello there")
	require.NoError(t, err)

	turns, err := f.service.GetHistory(context.Background(), testUserID, 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, entity.TurnInbound, turns[0].Direction)
	assert.Equal(t, entity.TurnOutbound, turns[1].Direction)
	assert.Equal(t, "thread-1", turns[0].ThreadID)
}

func TestTurnCountAdvancesPerMessage(t *testing.T) {
	f := newFixture(t)

	for _, msg := range []string{"hello", "how are you", "tell me a joke"} {
		_, err := f.service.HandleMessage(context.Background(), testUserID, msg)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, f.sessions.state(testUserID).TurnCount)
}

func TestArchiveTranscriptsUploadsPerUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.HandleMessage(context.Background(), testUserID, "hello there")
	require.NoError(t, err)

	archived, err := f.service.ArchiveTranscripts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, archived)

	body := f.storage.uploads[testUserID]
	require.NotEmpty(t, body)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	assert.Len(t, lines, 2)
}
