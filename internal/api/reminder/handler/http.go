package reminderHandler

import (
	reminderService "AssistantGolang/internal/api/reminder/service"
	"AssistantGolang/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ReminderHandler struct {
	log             *logrus.Logger
	validator       *validator.Validate
	middleware      middleware.Middleware
	reminderService reminderService.IReminderService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	reminderService reminderService.IReminderService,
) *ReminderHandler {
	return &ReminderHandler{
		log:             log,
		validator:       validate,
		middleware:      middleware,
		reminderService: reminderService,
	}
}

func (h *ReminderHandler) Start(srv fiber.Router) {
	reminders := srv.Group("/reminders")

	reminders.Post("/", h.middleware.NewTokenMiddleware, h.CreateReminder)
	reminders.Get("/", h.middleware.NewTokenMiddleware, h.ListReminders)
	reminders.Get("/:id", h.middleware.NewTokenMiddleware, h.GetReminder)
	reminders.Put("/", h.middleware.NewTokenMiddleware, h.UpdateReminder)
	reminders.Post("/snooze", h.middleware.NewTokenMiddleware, h.SnoozeReminder)
	reminders.Post("/:id/cancel", h.middleware.NewTokenMiddleware, h.CancelReminder)
	reminders.Post("/:id/complete", h.middleware.NewTokenMiddleware, h.CompleteReminder)

	// Provider status callbacks authenticate with a shared secret, not a
	// user token.
	reminders.Post("/voice/callback", h.VoiceCallback)
}
