package reminderRepository

import (
	"context"
	"sort"
	"sync"
	"time"

	"AssistantGolang/internal/api/reminder"
	"AssistantGolang/internal/entity"
)

// NewInMemory returns a map-backed Repository for tests. Users can be
// preloaded through the returned repository's Seed helpers via the
// concrete type.
func NewInMemory() *InMemoryRepository {
	return &InMemoryRepository{
		store: &inMemoryReminderStore{
			reminders: make(map[string]entity.Reminder),
			calls:     make(map[string]entity.VoiceCall),
			users:     make(map[string]entity.User),
		},
	}
}

type inMemoryReminderStore struct {
	mu        sync.RWMutex
	reminders map[string]entity.Reminder
	calls     map[string]entity.VoiceCall
	users     map[string]entity.User
}

type InMemoryRepository struct {
	store *inMemoryReminderStore
}

func (r *InMemoryRepository) NewClient(tx bool) (Client, error) {
	return Client{
		Reminder:  &inMemoryReminderRepo{store: r.store},
		VoiceCall: &inMemoryVoiceCallRepo{store: r.store},
		User:      &inMemoryUserRepo{store: r.store},
		Commit:    func() error { return nil },
		Rollback:  func() error { return nil },
	}, nil
}

func (r *InMemoryRepository) SeedUser(u entity.User) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.users[u.ID] = u
}

func (r *InMemoryRepository) VoiceCalls() []entity.VoiceCall {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	calls := make([]entity.VoiceCall, 0, len(r.store.calls))
	for _, c := range r.store.calls {
		calls = append(calls, c)
	}
	return calls
}

type inMemoryReminderRepo struct {
	store *inMemoryReminderStore
}

func (r *inMemoryReminderRepo) Create(_ context.Context, rem entity.Reminder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.reminders[rem.ID] = rem
	return nil
}

func (r *inMemoryReminderRepo) GetByID(_ context.Context, id string) (entity.Reminder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rem, ok := r.store.reminders[id]
	if !ok {
		return entity.Reminder{}, reminder.ErrReminderNotFound
	}
	return rem, nil
}

func (r *inMemoryReminderRepo) ListByUser(_ context.Context, userID string, statuses []entity.ReminderStatus) ([]entity.Reminder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	wanted := make(map[entity.ReminderStatus]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	var out []entity.Reminder
	for _, rem := range r.store.reminders {
		if rem.UserID == userID && wanted[rem.Status] {
			out = append(out, rem)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out, nil
}

func (r *inMemoryReminderRepo) ListDue(_ context.Context, now time.Time) ([]entity.Reminder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []entity.Reminder
	for _, rem := range r.store.reminders {
		due := rem.Status == entity.ReminderPending && !rem.DueAt.After(now)
		snoozedDue := rem.Status == entity.ReminderSnoozed &&
			rem.SnoozedUntil != nil && !rem.SnoozedUntil.After(now)
		if due || snoozedDue {
			out = append(out, rem)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out, nil
}

func (r *inMemoryReminderRepo) Update(_ context.Context, rem entity.Reminder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.reminders[rem.ID]
	if !ok {
		return reminder.ErrReminderNotFound
	}
	existing.Message = rem.Message
	existing.DueAt = rem.DueAt
	existing.DeliveryMethod = rem.DeliveryMethod
	existing.UpdatedAt = time.Now().UTC()
	r.store.reminders[rem.ID] = existing
	return nil
}

func (r *inMemoryReminderRepo) UpdateStatus(_ context.Context, id string, status entity.ReminderStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rem, ok := r.store.reminders[id]
	if !ok {
		return reminder.ErrReminderNotFound
	}
	rem.Status = status
	rem.UpdatedAt = time.Now().UTC()
	r.store.reminders[id] = rem
	return nil
}

func (r *inMemoryReminderRepo) Snooze(_ context.Context, id string, until time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rem, ok := r.store.reminders[id]
	if !ok {
		return reminder.ErrReminderNotFound
	}
	rem.Status = entity.ReminderSnoozed
	rem.SnoozedUntil = &until
	rem.UpdatedAt = time.Now().UTC()
	r.store.reminders[id] = rem
	return nil
}

type inMemoryVoiceCallRepo struct {
	store *inMemoryReminderStore
}

func (r *inMemoryVoiceCallRepo) Create(_ context.Context, call entity.VoiceCall) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.calls[call.ID] = call
	return nil
}

func (r *inMemoryVoiceCallRepo) UpdateStatusByProviderID(_ context.Context, providerID string, status entity.VoiceCallStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, call := range r.store.calls {
		if call.ProviderID == providerID {
			call.Status = status
			call.UpdatedAt = time.Now().UTC()
			r.store.calls[id] = call
			return nil
		}
	}
	return reminder.ErrVoiceCallNotFound
}

type inMemoryUserRepo struct {
	store *inMemoryReminderStore
}

func (r *inMemoryUserRepo) GetByID(_ context.Context, id string) (entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return entity.User{}, reminder.ErrUserNotFound
	}
	return u, nil
}
