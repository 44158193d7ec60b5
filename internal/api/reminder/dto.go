package reminder

import (
	"time"

	"AssistantGolang/internal/entity"
)

type CreateReminderRequest struct {
	UserID         string    `json:"user_id" validate:"required"`
	Message        string    `json:"message" validate:"required,max=1024"`
	DueAt          time.Time `json:"due_at" validate:"required"`
	DeliveryMethod string    `json:"delivery_method" validate:"omitempty,oneof=sms voice"`
	IsRecurring    bool      `json:"is_recurring"`
	RecurrenceRule string    `json:"recurrence_rule"`
}

type UpdateReminderRequest struct {
	ID             string     `json:"id" validate:"required"`
	Message        *string    `json:"message"`
	DueAt          *time.Time `json:"due_at"`
	DeliveryMethod *string    `json:"delivery_method"`
}

type SnoozeReminderRequest struct {
	ID      string `json:"id" validate:"required"`
	Minutes int    `json:"minutes" validate:"required,min=1,max=1440"`
}

type VoiceCallbackRequest struct {
	ProviderID string `json:"provider_id" validate:"required"`
	Status     string `json:"status" validate:"required"`
}

type ReminderResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Message        string     `json:"message"`
	DueAt          time.Time  `json:"due_at"`
	DeliveryMethod string     `json:"delivery_method"`
	Status         string     `json:"status"`
	IsRecurring    bool       `json:"is_recurring"`
	RecurrenceRule string     `json:"recurrence_rule,omitempty"`
	SnoozedUntil   *time.Time `json:"snoozed_until,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ReminderListResponse struct {
	Reminders []ReminderResponse `json:"reminders"`
	Total     int                `json:"total"`
}

func NewReminderResponse(r entity.Reminder) ReminderResponse {
	return ReminderResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		Message:        r.Message,
		DueAt:          r.DueAt,
		DeliveryMethod: string(r.DeliveryMethod),
		Status:         string(r.Status),
		IsRecurring:    r.IsRecurring,
		RecurrenceRule: r.RecurrenceRule,
		SnoozedUntil:   r.SnoozedUntil,
		CreatedAt:      r.CreatedAt,
	}
}
