package reminderService

import (
	"time"

	"AssistantGolang/internal/api/reminder"
	"AssistantGolang/internal/entity"
	contextPkg "AssistantGolang/pkg/context"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// terminalStatuses can never transition again.
var terminalStatuses = map[entity.ReminderStatus]bool{
	entity.ReminderSent:      true,
	entity.ReminderFailed:    true,
	entity.ReminderCompleted: true,
	entity.ReminderCancelled: true,
}

func (s *reminderService) CreateReminder(ctx context.Context, req reminder.CreateReminderRequest) (entity.Reminder, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if !req.DueAt.After(time.Now()) {
		return entity.Reminder{}, reminder.ErrInvalidDueTime
	}

	delivery := entity.DeliveryMethod(req.DeliveryMethod)
	if req.DeliveryMethod == "" {
		delivery = entity.DeliverySMS
	} else if delivery != entity.DeliverySMS && delivery != entity.DeliveryVoice {
		return entity.Reminder{}, reminder.ErrInvalidDelivery
	}

	repo, err := s.reminderRepository.NewClient(false)
	if err != nil {
		return entity.Reminder{}, err
	}

	now := time.Now().UTC()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return entity.Reminder{}, err
	}

	rem := entity.Reminder{
		ID:             id,
		UserID:         req.UserID,
		Message:        req.Message,
		DueAt:          req.DueAt.UTC(),
		DeliveryMethod: delivery,
		Status:         entity.ReminderPending,
		IsRecurring:    req.IsRecurring,
		RecurrenceRule: req.RecurrenceRule,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := repo.Reminder.Create(ctx, rem); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    req.UserID,
			"error":      err.Error(),
		}).Error("Failed to create reminder")
		return entity.Reminder{}, reminder.ErrCreateReminder
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"user_id":     req.UserID,
		"reminder_id": id,
		"due_at":      rem.DueAt,
	}).Info("Reminder created")

	return rem, nil
}

func (s *reminderService) GetReminder(ctx context.Context, id string) (entity.Reminder, error) {
	repo, err := s.reminderRepository.NewClient(false)
	if err != nil {
		return entity.Reminder{}, err
	}
	return repo.Reminder.GetByID(ctx, id)
}

func (s *reminderService) ListReminders(ctx context.Context, userID string, statuses []entity.ReminderStatus) ([]entity.Reminder, error) {
	if len(statuses) == 0 {
		statuses = []entity.ReminderStatus{entity.ReminderPending, entity.ReminderSnoozed}
	}

	repo, err := s.reminderRepository.NewClient(false)
	if err != nil {
		return nil, err
	}
	return repo.Reminder.ListByUser(ctx, userID, statuses)
}

func (s *reminderService) UpdateReminder(ctx context.Context, req reminder.UpdateReminderRequest) (entity.Reminder, error) {
	repo, err := s.reminderRepository.NewClient(false)
	if err != nil {
		return entity.Reminder{}, err
	}

	rem, err := repo.Reminder.GetByID(ctx, req.ID)
	if err != nil {
		return entity.Reminder{}, err
	}
	if terminalStatuses[rem.Status] {
		return entity.Reminder{}, reminder.ErrAlreadyFinalized
	}

	if req.Message != nil {
		rem.Message = *req.Message
	}
	if req.DueAt != nil {
		if !req.DueAt.After(time.Now()) {
			return entity.Reminder{}, reminder.ErrInvalidDueTime
		}
		rem.DueAt = req.DueAt.UTC()
	}
	if req.DeliveryMethod != nil {
		delivery := entity.DeliveryMethod(*req.DeliveryMethod)
		if delivery != entity.DeliverySMS && delivery != entity.DeliveryVoice {
			return entity.Reminder{}, reminder.ErrInvalidDelivery
		}
		rem.DeliveryMethod = delivery
	}

	if err := repo.Reminder.Update(ctx, rem); err != nil {
		return entity.Reminder{}, err
	}
	return rem, nil
}

func (s *reminderService) SnoozeReminder(ctx context.Context, req reminder.SnoozeReminderRequest) error {
	repo, err := s.reminderRepository.NewClient(false)
	if err != nil {
		return err
	}

	rem, err := repo.Reminder.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	if terminalStatuses[rem.Status] {
		return reminder.ErrAlreadyFinalized
	}

	until := time.Now().UTC().Add(time.Duration(req.Minutes) * time.Minute)
	return repo.Reminder.Snooze(ctx, req.ID, until)
}

func (s *reminderService) CancelReminder(ctx context.Context, id string, userID string) error {
	return s.finalize(ctx, id, userID, entity.ReminderCancelled)
}

func (s *reminderService) CompleteReminder(ctx context.Context, id string, userID string) error {
	return s.finalize(ctx, id, userID, entity.ReminderCompleted)
}

func (s *reminderService) finalize(ctx context.Context, id, userID string, status entity.ReminderStatus) error {
	repo, err := s.reminderRepository.NewClient(false)
	if err != nil {
		return err
	}

	rem, err := repo.Reminder.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rem.UserID != userID {
		return reminder.ErrReminderNotOwned
	}
	if terminalStatuses[rem.Status] {
		return reminder.ErrAlreadyFinalized
	}

	return repo.Reminder.UpdateStatus(ctx, id, status)
}
