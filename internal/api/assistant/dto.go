package assistant

import "AssistantGolang/internal/entity"

type MessageRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Text   string `json:"text" validate:"required,max=4096"`
}

type MessageResponse struct {
	Reply      string  `json:"reply"`
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	ThreadID   string  `json:"thread_id"`
}

// MessageResult is what the orchestrator hands back to every transport
// (HTTP webhook, websocket, tests).
type MessageResult struct {
	Reply      string
	Intent     string
	Confidence float64
	ThreadID   string
}

type TurnResponse struct {
	ID        string                   `json:"id"`
	Direction entity.TurnDirection     `json:"direction"`
	Text      string                   `json:"text"`
	Intent    string                   `json:"intent,omitempty"`
	Entities  []entity.ExtractedEntity `json:"entities,omitempty"`
	Timestamp string                   `json:"timestamp"`
}

type HistoryResponse struct {
	UserID string         `json:"user_id"`
	Turns  []TurnResponse `json:"turns"`
}
