package reminderHandler

import (
	"errors"
	"os"
	"time"

	"AssistantGolang/internal/api/reminder"
	"AssistantGolang/internal/entity"
	contextPkg "AssistantGolang/pkg/context"
	"AssistantGolang/pkg/handlerUtil"
	jwtPkg "AssistantGolang/pkg/jwt"
	"AssistantGolang/pkg/log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *ReminderHandler) CreateReminder(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req reminder.CreateReminderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}
	req.UserID = userData.ID

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	created, err := h.reminderService.CreateReminder(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_reminder")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusCreated, reminder.NewReminderResponse(created))
}

func (h *ReminderHandler) GetReminder(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("reminder ID is required"), ctx.Path())
	}

	rem, err := h.reminderService.GetReminder(c, id)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_reminder")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, reminder.NewReminderResponse(rem))
}

func (h *ReminderHandler) ListReminders(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var statuses []entity.ReminderStatus
	if raw := ctx.Query("status"); raw != "" {
		statuses = append(statuses, entity.ReminderStatus(raw))
	}

	reminders, err := h.reminderService.ListReminders(c, userData.ID, statuses)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_reminders")
	}

	responses := make([]reminder.ReminderResponse, 0, len(reminders))
	for _, rem := range reminders {
		responses = append(responses, reminder.NewReminderResponse(rem))
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, reminder.ReminderListResponse{
		Reminders: responses,
		Total:     len(responses),
	})
}

func (h *ReminderHandler) UpdateReminder(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req reminder.UpdateReminderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	updated, err := h.reminderService.UpdateReminder(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_reminder")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, reminder.NewReminderResponse(updated))
}

func (h *ReminderHandler) SnoozeReminder(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req reminder.SnoozeReminderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.reminderService.SnoozeReminder(c, req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "snooze_reminder")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
		"message": "Reminder snoozed",
	})
}

func (h *ReminderHandler) CancelReminder(ctx *fiber.Ctx) error {
	return h.finalize(ctx, "cancel_reminder", h.reminderService.CancelReminder)
}

func (h *ReminderHandler) CompleteReminder(ctx *fiber.Ctx) error {
	return h.finalize(ctx, "complete_reminder", h.reminderService.CompleteReminder)
}

func (h *ReminderHandler) finalize(ctx *fiber.Ctx, operation string, apply func(context.Context, string, string) error) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("reminder ID is required"), ctx.Path())
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	if err := apply(c, id, userData.ID); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), operation)
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
		"message": "Reminder updated",
	})
}

func (h *ReminderHandler) VoiceCallback(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	secret := os.Getenv("VOICE_CALLBACK_SECRET")
	if secret == "" || ctx.Get("X-Callback-Secret") != secret {
		return errHandler.HandleUnauthorized(ctx, requestID, "Invalid callback credentials")
	}

	var req reminder.VoiceCallbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	h.log.WithFields(log.Fields{
		"request_id":  requestID,
		"provider_id": req.ProviderID,
		"status":      req.Status,
	}).Debug("Processing voice status callback")

	if err := h.reminderService.HandleVoiceCallback(c, req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "voice_callback")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
		"message": "Status recorded",
	})
}
