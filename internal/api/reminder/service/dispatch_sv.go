package reminderService

import (
	"errors"
	"fmt"
	"time"

	"AssistantGolang/internal/api/reminder"
	reminderRepository "AssistantGolang/internal/api/reminder/repository"
	"AssistantGolang/internal/entity"
	contextPkg "AssistantGolang/pkg/context"
	"AssistantGolang/pkg/whatsapp"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// DispatchDue delivers every due reminder in one pass. A failing reminder
// is marked FAILED and the scan moves on; one bad item never blocks the
// rest of the batch.
func (s *reminderService) DispatchDue(ctx context.Context) (int, int, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.reminderRepository.NewClient(false)
	if err != nil {
		return 0, 0, err
	}

	due, err := repo.Reminder.ListDue(ctx, time.Now().UTC())
	if err != nil {
		return 0, 0, err
	}

	var sent, failed int
	for _, rem := range due {
		if err := s.dispatchOne(ctx, repo, rem); err != nil {
			failed++
			s.log.WithFields(logrus.Fields{
				"request_id":  requestID,
				"reminder_id": rem.ID,
				"user_id":     rem.UserID,
				"error":       err.Error(),
			}).Error("Reminder delivery failed")

			if statusErr := repo.Reminder.UpdateStatus(ctx, rem.ID, entity.ReminderFailed); statusErr != nil {
				s.log.WithFields(logrus.Fields{
					"request_id":  requestID,
					"reminder_id": rem.ID,
					"error":       statusErr.Error(),
				}).Error("Failed to mark reminder as failed")
			}
			continue
		}

		sent++
		if err := repo.Reminder.UpdateStatus(ctx, rem.ID, entity.ReminderSent); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id":  requestID,
				"reminder_id": rem.ID,
				"error":       err.Error(),
			}).Error("Failed to mark reminder as sent")
		}

		if rem.IsRecurring {
			// Next-occurrence generation is not implemented; recurring
			// reminders behave like one-shots once delivered.
			s.log.WithFields(logrus.Fields{
				"request_id":      requestID,
				"reminder_id":     rem.ID,
				"recurrence_rule": rem.RecurrenceRule,
			}).Warn("Recurring reminder delivered without rescheduling")
		}
	}

	return sent, failed, nil
}

func (s *reminderService) dispatchOne(ctx context.Context, repo reminderRepository.Client, rem entity.Reminder) error {
	user, err := repo.User.GetByID(ctx, rem.UserID)
	if err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}

	switch rem.DeliveryMethod {
	case entity.DeliveryVoice:
		return s.deliverVoice(ctx, repo, rem, user)
	default:
		return s.deliverMessage(ctx, rem, user)
	}
}

func (s *reminderService) deliverMessage(ctx context.Context, rem entity.Reminder, user entity.User) error {
	body := fmt.Sprintf("Reminder: %s", rem.Message)

	receipt, err := s.messageSender.SendMessage(ctx, user.PhoneNumber, body)
	if err != nil {
		if errors.Is(err, whatsapp.ErrRateLimited) {
			return fmt.Errorf("delivery rate limited: %w", err)
		}
		return fmt.Errorf("send message: %w", err)
	}
	if receipt.Status != whatsapp.DeliveryAccepted {
		return fmt.Errorf("delivery not accepted: %s", receipt.Status)
	}

	return nil
}

func (s *reminderService) deliverVoice(ctx context.Context, repo reminderRepository.Client, rem entity.Reminder, user entity.User) error {
	if !s.voiceCaller.TriggerAlarm(ctx, user.ID, user.PhoneNumber, rem.Message) {
		return errors.New("voice gateway rejected alarm call")
	}

	now := time.Now().UTC()
	callID, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return err
	}

	call := entity.VoiceCall{
		ID:          callID,
		UserID:      user.ID,
		ReminderID:  rem.ID,
		PhoneNumber: user.PhoneNumber,
		Message:     rem.Message,
		Status:      entity.CallQueued,
		ProviderID:  callID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.VoiceCall.Create(ctx, call); err != nil {
		// The call is already queued at the provider; losing the row is
		// logged, not treated as a delivery failure.
		s.log.WithFields(logrus.Fields{
			"reminder_id": rem.ID,
			"error":       err.Error(),
		}).Warn("Voice call queued but row not recorded")
	}

	return nil
}

// validCallStatuses is the provider lifecycle vocabulary.
var validCallStatuses = map[entity.VoiceCallStatus]bool{
	entity.CallQueued:     true,
	entity.CallRinging:    true,
	entity.CallInProgress: true,
	entity.CallCompleted:  true,
	entity.CallBusy:       true,
	entity.CallNoAnswer:   true,
	entity.CallFailed:     true,
	entity.CallCanceled:   true,
}

func (s *reminderService) HandleVoiceCallback(ctx context.Context, req reminder.VoiceCallbackRequest) error {
	status := entity.VoiceCallStatus(req.Status)
	if !validCallStatuses[status] {
		return reminder.ErrInvalidCallStatus
	}

	repo, err := s.reminderRepository.NewClient(false)
	if err != nil {
		return err
	}

	if err := repo.VoiceCall.UpdateStatusByProviderID(ctx, req.ProviderID, status); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  contextPkg.GetRequestID(ctx),
		"provider_id": req.ProviderID,
		"status":      req.Status,
	}).Info("Voice call status updated")

	return nil
}
