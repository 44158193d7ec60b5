package memoryHandler

import (
	memoryService "AssistantGolang/internal/api/memory/service"
	"AssistantGolang/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type MemoryHandler struct {
	log           *logrus.Logger
	validator     *validator.Validate
	middleware    middleware.Middleware
	memoryService memoryService.IMemoryService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	memoryService memoryService.IMemoryService,
) *MemoryHandler {
	return &MemoryHandler{
		log:           log,
		validator:     validate,
		middleware:    middleware,
		memoryService: memoryService,
	}
}

func (h *MemoryHandler) Start(srv fiber.Router) {
	memories := srv.Group("/memories")

	memories.Post("/", h.middleware.NewTokenMiddleware, h.CreateMemory)
	memories.Post("/query", h.middleware.NewTokenMiddleware, h.QueryMemories)
	memories.Get("/:id", h.middleware.NewTokenMiddleware, h.GetMemory)
	memories.Put("/", h.middleware.NewTokenMiddleware, h.UpdateMemory)
	memories.Delete("/:id", h.middleware.NewTokenMiddleware, h.ArchiveMemory)
	memories.Post("/:id/links", h.middleware.NewTokenMiddleware, h.LinkMemories)
	memories.Get("/:id/related", h.middleware.NewTokenMiddleware, h.GetRelated)
}
