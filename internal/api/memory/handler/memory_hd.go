package memoryHandler

import (
	"errors"
	"time"

	"AssistantGolang/internal/api/memory"
	contextPkg "AssistantGolang/pkg/context"
	"AssistantGolang/pkg/handlerUtil"
	jwtPkg "AssistantGolang/pkg/jwt"
	"AssistantGolang/pkg/log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *MemoryHandler) CreateMemory(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req memory.CreateMemoryRequest
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

	created, err := h.memoryService.CreateMemory(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_memory")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusCreated, memory.NewMemoryResponse(created))
}

func (h *MemoryHandler) GetMemory(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("memory ID is required"), ctx.Path())
	}

	m, err := h.memoryService.GetMemory(c, id)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_memory")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, memory.NewMemoryResponse(m))
}

func (h *MemoryHandler) UpdateMemory(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req memory.UpdateMemoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	updated, err := h.memoryService.UpdateMemory(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_memory")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, memory.NewMemoryResponse(updated))
}

func (h *MemoryHandler) ArchiveMemory(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("memory ID is required"), ctx.Path())
	}

	if err := h.memoryService.ArchiveMemory(c, id); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "archive_memory")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
		"message": "Memory archived",
	})
}

func (h *MemoryHandler) QueryMemories(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req memory.QueryMemoriesRequest
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

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"user_id":    req.UserID,
		"categories": req.Categories,
	}).Debug("Processing memory query")

	memories, err := h.memoryService.QueryMemories(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "query_memories")
	}

	responses := make([]memory.MemoryResponse, 0, len(memories))
	for _, m := range memories {
		responses = append(responses, memory.NewMemoryResponse(m))
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, memory.MemoryListResponse{
		Memories: responses,
		Total:    len(responses),
	})
}

func (h *MemoryHandler) LinkMemories(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("memory ID is required"), ctx.Path())
	}

	var req memory.LinkMemoriesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.memoryService.LinkMemories(c, id, req.TargetID); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "link_memories")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
		"message": "Memories linked",
	})
}

func (h *MemoryHandler) GetRelated(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("memory ID is required"), ctx.Path())
	}

	related, err := h.memoryService.GetRelated(c, id)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_related_memories")
	}

	responses := make([]memory.MemoryResponse, 0, len(related))
	for _, m := range related {
		responses = append(responses, memory.NewMemoryResponse(m))
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, memory.MemoryListResponse{
		Memories: responses,
		Total:    len(responses),
	})
}
