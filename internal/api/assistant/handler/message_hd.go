package assistantHandler

import (
	"time"

	"AssistantGolang/internal/api/assistant"
	contextPkg "AssistantGolang/pkg/context"
	"AssistantGolang/pkg/handlerUtil"
	jwtPkg "AssistantGolang/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *AssistantHandler) HandleMessage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req assistant.MessageRequest
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

	result, err := h.assistantService.HandleMessage(c, req.UserID, req.Text)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "handle_message")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, assistant.MessageResponse{
		Reply:      result.Reply,
		Intent:     result.Intent,
		Confidence: result.Confidence,
		ThreadID:   result.ThreadID,
	})
}

func (h *AssistantHandler) GetHistory(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	limit := int64(ctx.QueryInt("limit", 0))

	turns, err := h.assistantService.GetHistory(c, userData.ID, limit)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_history")
	}

	responses := make([]assistant.TurnResponse, 0, len(turns))
	for _, turn := range turns {
		responses = append(responses, assistant.TurnResponse{
			ID:        turn.ID,
			Direction: turn.Direction,
			Text:      turn.Text,
			Intent:    turn.Intent,
			Entities:  turn.Entities,
			Timestamp: turn.Timestamp.Format(time.RFC3339),
		})
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, assistant.HistoryResponse{
		UserID: userData.ID,
		Turns:  responses,
	})
}

func (h *AssistantHandler) ClearSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	if err := h.assistantService.ClearSession(c, userData.ID); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "clear_session")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
		"message": "Session cleared",
	})
}
