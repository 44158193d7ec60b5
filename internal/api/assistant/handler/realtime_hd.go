package assistantHandler

import (
	"encoding/json"
	"time"

	contextPkg "AssistantGolang/pkg/context"
	jwtPkg "AssistantGolang/pkg/jwt"
	"AssistantGolang/pkg/log"
	websocketPkg "AssistantGolang/pkg/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/net/context"
)

type chatPayload struct {
	Text string `json:"text"`
}

type voicePayload struct {
	Transcript string `json:"transcript"`
}

// UpgradeRealtime authenticates the websocket handshake. Browsers cannot set
// an Authorization header on the upgrade request, so the token rides in a
// query param instead.
func (h *AssistantHandler) UpgradeRealtime(ctx *fiber.Ctx) error {
	if !fiberws.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	token, err := jwtPkg.VerifyTokenString(ctx.Query("token"), "JWT_ACCESS_TOKEN_SECRET")
	if err != nil || !token.Valid {
		return fiber.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fiber.ErrUnauthorized
	}
	userID, _ := claims["id"].(string)
	if userID == "" {
		return fiber.ErrUnauthorized
	}

	ctx.Locals("user_id", userID)
	return ctx.Next()
}

// Realtime serves one websocket session. Every inbound envelope produces at
// most one reply envelope; unreadable frames are dropped so a bad client
// cannot wedge the connection.
func (h *AssistantHandler) Realtime(conn *fiberws.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	if userID == "" {
		conn.Close()
		return
	}

	h.log.WithFields(log.Fields{"user_id": userID}).Info("Realtime session opened")
	defer h.log.WithFields(log.Fields{"user_id": userID}).Info("Realtime session closed")

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var envelope websocketPkg.Envelope
		if err := json.Unmarshal(message, &envelope); err != nil {
			h.log.WithFields(log.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Warn("Dropping unreadable realtime frame")
			continue
		}

		if reply, ok := h.handleRealtimeEvent(userID, envelope); ok {
			reply.CorrelationID = envelope.CorrelationID
			if err := conn.WriteJSON(reply); err != nil {
				return
			}
		}
	}
}

func (h *AssistantHandler) handleRealtimeEvent(userID string, envelope websocketPkg.Envelope) (websocketPkg.Envelope, bool) {
	c, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), "ws-"+userID), 30*time.Second)
	defer cancel()

	switch envelope.Event {
	case websocketPkg.EventChatMessage:
		var payload chatPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil || payload.Text == "" {
			return websocketPkg.Envelope{}, false
		}
		return h.replyEnvelope(c, userID, payload.Text, websocketPkg.EventChatResponse)

	case websocketPkg.EventVoiceData:
		var payload voicePayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil || payload.Transcript == "" {
			return websocketPkg.Envelope{}, false
		}
		return h.replyEnvelope(c, userID, payload.Transcript, websocketPkg.EventVoiceResponse)

	case websocketPkg.EventWakeWord:
		raw, _ := json.Marshal(fiber.Map{"text": "I'm listening."})
		return websocketPkg.Envelope{Event: websocketPkg.EventResponseText, Payload: raw}, true

	default:
		h.log.WithFields(log.Fields{
			"user_id": userID,
			"event":   envelope.Event,
		}).Debug("Ignoring unknown realtime event")
		return websocketPkg.Envelope{}, false
	}
}

func (h *AssistantHandler) replyEnvelope(c context.Context, userID, text, event string) (websocketPkg.Envelope, bool) {
	result, err := h.assistantService.HandleMessage(c, userID, text)
	if err != nil {
		h.log.WithFields(log.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("Realtime message handling failed")
		raw, _ := json.Marshal(fiber.Map{"text": "Something went wrong, try again."})
		return websocketPkg.Envelope{Event: event, Payload: raw}, true
	}

	raw, err := json.Marshal(fiber.Map{
		"text":      result.Reply,
		"intent":    result.Intent,
		"thread_id": result.ThreadID,
	})
	if err != nil {
		return websocketPkg.Envelope{}, false
	}
	return websocketPkg.Envelope{Event: event, Payload: raw}, true
}
