package reminderRepository

import (
	"context"
	"time"

	"AssistantGolang/internal/api/reminder"
	"AssistantGolang/internal/entity"
	contextPkg "AssistantGolang/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type voiceCallRepo struct {
	q   SQLExecutor
	log *logrus.Logger
}

func (r *voiceCallRepo) Create(c context.Context, call entity.VoiceCall) error {
	requestID := contextPkg.GetRequestID(c)

	argsKV := map[string]interface{}{
		"id":           call.ID,
		"user_id":      call.UserID,
		"reminder_id":  call.ReminderID,
		"phone_number": call.PhoneNumber,
		"message":      call.Message,
		"status":       string(call.Status),
		"provider_id":  call.ProviderID,
		"created_at":   call.CreatedAt,
		"updated_at":   call.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryCreateVoiceCall, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for Create voice call")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating voice call")
		return err
	}

	return nil
}

// UpdateStatusByProviderID applies a provider lifecycle callback. The
// provider id is the only handle callbacks carry.
func (r *voiceCallRepo) UpdateStatusByProviderID(c context.Context, providerID string, status entity.VoiceCallStatus) error {
	query, args, err := sqlx.Named(queryUpdateVoiceCallStatus, map[string]interface{}{
		"provider_id": providerID,
		"status":      string(status),
		"updated_at":  time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	query = r.q.Rebind(query)

	res, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return reminder.ErrVoiceCallNotFound
	}
	return nil
}
