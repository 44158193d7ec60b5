package entity

import (
	"time"
)

type ConversationStatus string

const (
	ConversationActive    ConversationStatus = "ACTIVE"
	ConversationWaiting   ConversationStatus = "WAITING_INPUT"
	ConversationCompleted ConversationStatus = "COMPLETED"
)

type TurnDirection string

const (
	TurnInbound  TurnDirection = "inbound"
	TurnOutbound TurnDirection = "outbound"
)

// ConversationState is the per-user session document persisted as flat JSON
// in the TTL cache. One live instance per user id; the cache evicts it when
// the session goes idle past the timeout.
type ConversationState struct {
	UserID            string                 `json:"user_id"`
	ThreadID          string                 `json:"thread_id"`
	ActiveIntent      string                 `json:"active_intent,omitempty"`
	LastIntent        string                 `json:"last_intent,omitempty"`
	CollectedEntities []ExtractedEntity      `json:"collected_entities"`
	MissingEntities   []string               `json:"missing_entities"`
	Context           map[string]interface{} `json:"context"`
	TurnCount         int                    `json:"turn_count"`
	LastMessageAt     time.Time              `json:"last_message_at"`
	ExpiresAt         time.Time              `json:"expires_at"`
	Status            ConversationStatus     `json:"status"`
	PendingApproval   *PendingToolApproval   `json:"pending_tool_approval,omitempty"`
}

// PendingToolApproval parks a sensitive tool invocation on the session until
// the user confirms it with a verification code.
type PendingToolApproval struct {
	ToolName    string            `json:"tool_name"`
	Args        map[string]string `json:"args"`
	RequestedAt time.Time         `json:"requested_at"`
}

// ExtractedEntity is a typed, positioned substring of a user message.
// Spans are half-open character ranges into the source text.
type ExtractedEntity struct {
	Type       string            `json:"type"`
	Value      string            `json:"value"`
	Original   string            `json:"original"`
	StartIndex int               `json:"start_index"`
	EndIndex   int               `json:"end_index"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ConversationTurn is an immutable history record, kept in a capped
// most-recent-50 ring per user.
type ConversationTurn struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	ThreadID  string            `json:"thread_id"`
	Direction TurnDirection     `json:"direction"`
	Text      string            `json:"text"`
	Intent    string            `json:"intent,omitempty"`
	Entities  []ExtractedEntity `json:"entities,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
