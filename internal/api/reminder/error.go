package reminder

import "AssistantGolang/pkg/response"

var (
	ErrReminderNotFound   = response.NewError(404, "reminder not found")
	ErrReminderNotOwned   = response.NewError(403, "reminder does not belong to user")
	ErrInvalidDueTime     = response.NewError(400, "due time must be in the future")
	ErrInvalidDelivery    = response.NewError(400, "invalid delivery method")
	ErrAlreadyFinalized   = response.NewError(409, "reminder is already in a terminal state")
	ErrUserNotFound       = response.NewError(404, "user not found")
	ErrVoiceCallNotFound  = response.NewError(404, "voice call not found")
	ErrInvalidCallStatus  = response.NewError(400, "invalid voice call status")
	ErrCreateReminder     = response.NewError(500, "failed to create reminder")
)
