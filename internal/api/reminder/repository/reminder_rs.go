package reminderRepository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"AssistantGolang/internal/api/reminder"
	"AssistantGolang/internal/entity"
	contextPkg "AssistantGolang/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type ReminderDB struct {
	ID             string         `db:"id"`
	UserID         string         `db:"user_id"`
	Message        string         `db:"message"`
	DueAt          time.Time      `db:"due_at"`
	DeliveryMethod string         `db:"delivery_method"`
	Status         string         `db:"status"`
	IsRecurring    bool           `db:"is_recurring"`
	RecurrenceRule sql.NullString `db:"recurrence_rule"`
	SnoozedUntil   sql.NullTime   `db:"snoozed_until"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r ReminderDB) toEntity() entity.Reminder {
	out := entity.Reminder{
		ID:             r.ID,
		UserID:         r.UserID,
		Message:        r.Message,
		DueAt:          r.DueAt,
		DeliveryMethod: entity.DeliveryMethod(r.DeliveryMethod),
		Status:         entity.ReminderStatus(r.Status),
		IsRecurring:    r.IsRecurring,
		RecurrenceRule: r.RecurrenceRule.String,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.SnoozedUntil.Valid {
		t := r.SnoozedUntil.Time
		out.SnoozedUntil = &t
	}
	return out
}

type reminderRepo struct {
	q   SQLExecutor
	log *logrus.Logger
}

func (r *reminderRepo) Create(c context.Context, rem entity.Reminder) error {
	requestID := contextPkg.GetRequestID(c)

	var snoozedUntil interface{}
	if rem.SnoozedUntil != nil {
		snoozedUntil = *rem.SnoozedUntil
	}

	argsKV := map[string]interface{}{
		"id":              rem.ID,
		"user_id":         rem.UserID,
		"message":         rem.Message,
		"due_at":          rem.DueAt,
		"delivery_method": string(rem.DeliveryMethod),
		"status":          string(rem.Status),
		"is_recurring":    rem.IsRecurring,
		"recurrence_rule": rem.RecurrenceRule,
		"snoozed_until":   snoozedUntil,
		"created_at":      rem.CreatedAt,
		"updated_at":      rem.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryCreateReminder, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for Create reminder")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating reminder")
		return err
	}

	return nil
}

func (r *reminderRepo) GetByID(c context.Context, id string) (entity.Reminder, error) {
	query, args, err := sqlx.Named(queryGetReminderByID, map[string]interface{}{"id": id})
	if err != nil {
		return entity.Reminder{}, err
	}
	query = r.q.Rebind(query)

	var row ReminderDB
	if err := r.q.GetContext(c, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Reminder{}, reminder.ErrReminderNotFound
		}
		return entity.Reminder{}, err
	}

	return row.toEntity(), nil
}

func (r *reminderRepo) ListByUser(c context.Context, userID string, statuses []entity.ReminderStatus) ([]entity.Reminder, error) {
	statusStrings := make([]string, 0, len(statuses))
	for _, s := range statuses {
		statusStrings = append(statusStrings, string(s))
	}

	query, args, err := sqlx.Named(queryListRemindersByUser, map[string]interface{}{
		"user_id":  userID,
		"statuses": pq.StringArray(statusStrings),
	})
	if err != nil {
		return nil, err
	}
	query = r.q.Rebind(query)

	var rows []ReminderDB
	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		return nil, err
	}

	reminders := make([]entity.Reminder, 0, len(rows))
	for _, row := range rows {
		reminders = append(reminders, row.toEntity())
	}
	return reminders, nil
}

func (r *reminderRepo) ListDue(c context.Context, now time.Time) ([]entity.Reminder, error) {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryListDueReminders, map[string]interface{}{
		"now": now,
	})
	if err != nil {
		return nil, err
	}
	query = r.q.Rebind(query)

	var rows []ReminderDB
	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when listing due reminders")
		return nil, err
	}

	reminders := make([]entity.Reminder, 0, len(rows))
	for _, row := range rows {
		reminders = append(reminders, row.toEntity())
	}
	return reminders, nil
}

func (r *reminderRepo) Update(c context.Context, rem entity.Reminder) error {
	argsKV := map[string]interface{}{
		"id":              rem.ID,
		"message":         rem.Message,
		"due_at":          rem.DueAt,
		"delivery_method": string(rem.DeliveryMethod),
		"updated_at":      time.Now().UTC(),
	}

	query, args, err := sqlx.Named(queryUpdateReminder, argsKV)
	if err != nil {
		return err
	}
	query = r.q.Rebind(query)

	res, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return reminder.ErrReminderNotFound
	}
	return nil
}

func (r *reminderRepo) UpdateStatus(c context.Context, id string, status entity.ReminderStatus) error {
	query, args, err := sqlx.Named(queryUpdateReminderStatus, map[string]interface{}{
		"id":         id,
		"status":     string(status),
		"updated_at": time.Now().UTC(),
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
		return reminder.ErrReminderNotFound
	}
	return nil
}

func (r *reminderRepo) Snooze(c context.Context, id string, until time.Time) error {
	query, args, err := sqlx.Named(querySnoozeReminder, map[string]interface{}{
		"id":         id,
		"until":      until,
		"updated_at": time.Now().UTC(),
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
		return reminder.ErrReminderNotFound
	}
	return nil
}
