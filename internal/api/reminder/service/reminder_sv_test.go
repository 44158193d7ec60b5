package reminderService

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"AssistantGolang/internal/api/reminder"
	reminderRepository "AssistantGolang/internal/api/reminder/repository"
	"AssistantGolang/internal/entity"
	"AssistantGolang/pkg/utils"
	"AssistantGolang/pkg/whatsapp"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent    []string
	failFor map[string]error
}

func (f *fakeSender) SendMessage(_ context.Context, phoneNumber, body string) (whatsapp.DeliveryReceipt, error) {
	if err, ok := f.failFor[body]; ok {
		return whatsapp.DeliveryReceipt{Status: whatsapp.DeliveryFailed}, err
	}
	f.sent = append(f.sent, phoneNumber+": "+body)
	return whatsapp.DeliveryReceipt{Status: whatsapp.DeliveryAccepted, ProviderID: "msg-1"}, nil
}

func (f *fakeSender) Disconnect() error { return nil }
func (f *fakeSender) IsConnected() bool { return true }

type fakeCaller struct {
	calls  int
	refuse bool
}

func (f *fakeCaller) TriggerAlarm(_ context.Context, _, _, _ string) bool {
	f.calls++
	return !f.refuse
}

func newReminderFixture(t *testing.T) (IReminderService, *reminderRepository.InMemoryRepository, *fakeSender, *fakeCaller) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := reminderRepository.NewInMemory()
	repo.SeedUser(entity.User{ID: "user-1", Username: "sam", PhoneNumber: "+15551230001"})

	sender := &fakeSender{failFor: make(map[string]error)}
	caller := &fakeCaller{}
	svc := NewReminderService(logger, repo, sender, caller, utils.New())
	return svc, repo, sender, caller
}

func createPending(t *testing.T, svc IReminderService, message string, due time.Time, method string) entity.Reminder {
	t.Helper()
	rem, err := svc.CreateReminder(context.Background(), reminder.CreateReminderRequest{
		UserID:         "user-1",
		Message:        message,
		DueAt:          due,
		DeliveryMethod: method,
	})
	require.NoError(t, err)
	return rem
}

func TestCreateReminderRejectsPastDueTime(t *testing.T) {
	svc, _, _, _ := newReminderFixture(t)

	_, err := svc.CreateReminder(context.Background(), reminder.CreateReminderRequest{
		UserID:  "user-1",
		Message: "too late",
		DueAt:   time.Now().Add(-time.Minute),
	})
	assert.ErrorIs(t, err, reminder.ErrInvalidDueTime)
}

func TestCreateReminderDefaultsToSMS(t *testing.T) {
	svc, _, _, _ := newReminderFixture(t)

	rem := createPending(t, svc, "call mom", time.Now().Add(time.Hour), "")
	assert.Equal(t, entity.DeliverySMS, rem.DeliveryMethod)
	assert.Equal(t, entity.ReminderPending, rem.Status)
}

// Two reminders are due; the first delivery fails. The second must still
// go out, and each ends in its own terminal state.
func TestDispatchDueIsolatesFailures(t *testing.T) {
	svc, _, sender, _ := newReminderFixture(t)
	ctx := context.Background()

	first := createPending(t, svc, "first", time.Now().Add(10*time.Millisecond), "sms")
	second := createPending(t, svc, "second", time.Now().Add(10*time.Millisecond), "sms")
	sender.failFor["Reminder: first"] = errors.New("provider unreachable")

	time.Sleep(20 * time.Millisecond)

	sent, failed, err := svc.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, failed)

	got, err := svc.GetReminder(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReminderFailed, got.Status)

	got, err = svc.GetReminder(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReminderSent, got.Status)

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Reminder: second")
}

func TestDispatchDueSkipsFutureReminders(t *testing.T) {
	svc, _, sender, _ := newReminderFixture(t)

	createPending(t, svc, "later", time.Now().Add(time.Hour), "sms")

	sent, failed, err := svc.DispatchDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, failed)
	assert.Empty(t, sender.sent)
}

func TestDispatchVoiceReminderRecordsCall(t *testing.T) {
	svc, repo, _, caller := newReminderFixture(t)
	ctx := context.Background()

	rem := createPending(t, svc, "wake up", time.Now().Add(10*time.Millisecond), "voice")
	time.Sleep(20 * time.Millisecond)

	sent, failed, err := svc.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Zero(t, failed)
	assert.Equal(t, 1, caller.calls)

	calls := repo.VoiceCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, rem.ID, calls[0].ReminderID)
	assert.Equal(t, entity.CallQueued, calls[0].Status)
}

func TestDispatchMissingUserMarksFailed(t *testing.T) {
	svc, _, _, _ := newReminderFixture(t)
	ctx := context.Background()

	rem, err := svc.CreateReminder(ctx, reminder.CreateReminderRequest{
		UserID:  "ghost",
		Message: "no phone on file",
		DueAt:   time.Now().Add(10 * time.Millisecond),
	})
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	sent, failed, err := svc.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Equal(t, 1, failed)

	got, err := svc.GetReminder(ctx, rem.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReminderFailed, got.Status)
}

func TestSnoozeDefersThenRedelivers(t *testing.T) {
	svc, _, sender, _ := newReminderFixture(t)
	ctx := context.Background()

	rem := createPending(t, svc, "stretch", time.Now().Add(10*time.Millisecond), "sms")
	require.NoError(t, svc.SnoozeReminder(ctx, reminder.SnoozeReminderRequest{ID: rem.ID, Minutes: 60}))

	time.Sleep(20 * time.Millisecond)
	sent, _, err := svc.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, sender.sent)

	got, err := svc.GetReminder(ctx, rem.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReminderSnoozed, got.Status)
}

func TestCancelRequiresOwnership(t *testing.T) {
	svc, _, _, _ := newReminderFixture(t)
	ctx := context.Background()

	rem := createPending(t, svc, "call mom", time.Now().Add(time.Hour), "sms")

	assert.ErrorIs(t, svc.CancelReminder(ctx, rem.ID, "someone-else"), reminder.ErrReminderNotOwned)
	require.NoError(t, svc.CancelReminder(ctx, rem.ID, "user-1"))

	got, err := svc.GetReminder(ctx, rem.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReminderCancelled, got.Status)

	assert.ErrorIs(t, svc.CancelReminder(ctx, rem.ID, "user-1"), reminder.ErrAlreadyFinalized)
}

func TestVoiceCallbackWalksLifecycle(t *testing.T) {
	svc, repo, _, _ := newReminderFixture(t)
	ctx := context.Background()

	createPending(t, svc, "wake up", time.Now().Add(10*time.Millisecond), "voice")
	time.Sleep(20 * time.Millisecond)
	_, _, err := svc.DispatchDue(ctx)
	require.NoError(t, err)

	calls := repo.VoiceCalls()
	require.Len(t, calls, 1)
	providerID := calls[0].ProviderID

	for _, status := range []string{"ringing", "in-progress", "completed"} {
		require.NoError(t, svc.HandleVoiceCallback(ctx, reminder.VoiceCallbackRequest{
			ProviderID: providerID,
			Status:     status,
		}))
	}

	calls = repo.VoiceCalls()
	assert.Equal(t, entity.CallCompleted, calls[0].Status)
}

func TestVoiceCallbackRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _ := newReminderFixture(t)

	err := svc.HandleVoiceCallback(context.Background(), reminder.VoiceCallbackRequest{
		ProviderID: "p-1",
		Status:     "vanished",
	})
	assert.ErrorIs(t, err, reminder.ErrInvalidCallStatus)
}
