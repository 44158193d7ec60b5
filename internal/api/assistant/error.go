package assistant

import "AssistantGolang/pkg/response"

var (
	ErrEmptyMessage            = response.NewError(400, "message text is required")
	ErrSessionNotFound         = response.NewError(404, "no active session for user")
	ErrNoPendingApproval       = response.NewError(404, "no pending tool approval")
	ErrInvalidVerificationCode = response.NewError(401, "verification code does not match")
	ErrVerificationExpired     = response.NewError(401, "verification code expired or was never issued")
	ErrToolNotFound            = response.NewError(404, "unknown tool")
	ErrDeliveryFailed          = response.NewError(502, "message delivery failed")
	ErrDeliveryRateLimited     = response.NewError(429, "message delivery rate limited")
)
