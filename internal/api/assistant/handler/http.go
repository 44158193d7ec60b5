package assistantHandler

import (
	assistantService "AssistantGolang/internal/api/assistant/service"
	"AssistantGolang/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type AssistantHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	assistantService assistantService.IAssistantService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	assistantService assistantService.IAssistantService,
) *AssistantHandler {
	return &AssistantHandler{
		log:              log,
		validator:        validate,
		middleware:       middleware,
		assistantService: assistantService,
	}
}

func (h *AssistantHandler) Start(srv fiber.Router) {
	assistant := srv.Group("/assistant")

	assistant.Post("/message", h.middleware.NewTokenMiddleware, h.HandleMessage)
	assistant.Get("/history", h.middleware.NewTokenMiddleware, h.GetHistory)
	assistant.Delete("/session", h.middleware.NewTokenMiddleware, h.ClearSession)

	assistant.Use("/ws", h.UpgradeRealtime)
	assistant.Get("/ws", fiberws.New(h.Realtime))
}
