package entity

import (
	"time"
)

type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "PENDING"
	ReminderSent      ReminderStatus = "SENT"
	ReminderFailed    ReminderStatus = "FAILED"
	ReminderCompleted ReminderStatus = "COMPLETED"
	ReminderCancelled ReminderStatus = "CANCELLED"
	ReminderSnoozed   ReminderStatus = "SNOOZED"
)

type DeliveryMethod string

const (
	DeliverySMS   DeliveryMethod = "sms"
	DeliveryVoice DeliveryMethod = "voice"
)

type Reminder struct {
	ID             string         `json:"id" db:"id"`
	UserID         string         `json:"user_id" db:"user_id"`
	Message        string         `json:"message" db:"message"`
	DueAt          time.Time      `json:"due_at" db:"due_at"`
	DeliveryMethod DeliveryMethod `json:"delivery_method" db:"delivery_method"`
	Status         ReminderStatus `json:"status" db:"status"`
	IsRecurring    bool           `json:"is_recurring" db:"is_recurring"`
	RecurrenceRule string         `json:"recurrence_rule,omitempty" db:"recurrence_rule"`
	SnoozedUntil   *time.Time     `json:"snoozed_until,omitempty" db:"snoozed_until"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

type VoiceCallStatus string

const (
	CallQueued     VoiceCallStatus = "queued"
	CallRinging    VoiceCallStatus = "ringing"
	CallInProgress VoiceCallStatus = "in-progress"
	CallCompleted  VoiceCallStatus = "completed"
	CallBusy       VoiceCallStatus = "busy"
	CallNoAnswer   VoiceCallStatus = "no-answer"
	CallFailed     VoiceCallStatus = "failed"
	CallCanceled   VoiceCallStatus = "canceled"
)

type VoiceCall struct {
	ID          string          `json:"id" db:"id"`
	UserID      string          `json:"user_id" db:"user_id"`
	ReminderID  string          `json:"reminder_id,omitempty" db:"reminder_id"`
	PhoneNumber string          `json:"phone_number" db:"phone_number"`
	Message     string          `json:"message" db:"message"`
	Status      VoiceCallStatus `json:"status" db:"status"`
	ProviderID  string          `json:"provider_id,omitempty" db:"provider_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}
