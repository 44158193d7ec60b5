package entity

import (
	"time"
)

type ImportanceLevel string

const (
	ImportanceCritical  ImportanceLevel = "critical"
	ImportanceHigh      ImportanceLevel = "high"
	ImportanceMedium    ImportanceLevel = "medium"
	ImportanceLow       ImportanceLevel = "low"
	ImportanceTemporary ImportanceLevel = "temporary"
)

// ImportanceWeights drives all ranking and minimum-importance filtering.
var ImportanceWeights = map[ImportanceLevel]int{
	ImportanceCritical:  100,
	ImportanceHigh:      75,
	ImportanceMedium:    50,
	ImportanceLow:       25,
	ImportanceTemporary: 10,
}

func (l ImportanceLevel) Weight() int {
	return ImportanceWeights[l]
}

var importanceOrder = []ImportanceLevel{
	ImportanceTemporary,
	ImportanceLow,
	ImportanceMedium,
	ImportanceHigh,
	ImportanceCritical,
}

// Promote returns the next tier up. Promoting critical is a no-op.
func (l ImportanceLevel) Promote() ImportanceLevel {
	for i, lv := range importanceOrder {
		if lv == l && i < len(importanceOrder)-1 {
			return importanceOrder[i+1]
		}
	}
	return l
}

// Demote returns the next tier down. Demoting temporary is a no-op.
func (l ImportanceLevel) Demote() ImportanceLevel {
	for i, lv := range importanceOrder {
		if lv == l && i > 0 {
			return importanceOrder[i-1]
		}
	}
	return l
}

type Memory struct {
	ID               string          `json:"id" db:"id"`
	UserID           string          `json:"user_id" db:"user_id"`
	Category         string          `json:"category" db:"category"`
	Importance       ImportanceLevel `json:"importance" db:"importance"`
	Source           string          `json:"source" db:"source"`
	Content          string          `json:"content" db:"content"`
	Summary          string          `json:"summary,omitempty" db:"summary"`
	Tags             []string        `json:"tags" db:"tags"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
	LastAccessedAt   time.Time       `json:"last_accessed_at" db:"last_accessed_at"`
	AccessCount      int             `json:"access_count" db:"access_count"`
	ExpiresAt        *time.Time      `json:"expires_at,omitempty" db:"expires_at"`
	IsArchived       bool            `json:"is_archived" db:"is_archived"`
	RelatedMemoryIDs []string        `json:"related_memory_ids" db:"related_memory_ids"`
}

// Pattern is an observed behavioral regularity inferred from conversation
// history, fed into context ranking alongside explicit memories.
type Pattern struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Kind         string    `json:"kind" db:"kind"`
	Description  string    `json:"description" db:"description"`
	Confidence   float64   `json:"confidence" db:"confidence"`
	Occurrences  int       `json:"occurrences" db:"occurrences"`
	LastObserved time.Time `json:"last_observed" db:"last_observed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type RelevanceLevel string

const (
	RelevanceCritical RelevanceLevel = "critical"
	RelevanceHigh     RelevanceLevel = "high"
	RelevanceMedium   RelevanceLevel = "medium"
	RelevanceLow      RelevanceLevel = "low"
)

type TimeWindow string

const (
	WindowNow     TimeWindow = "now"
	WindowToday   TimeWindow = "today"
	WindowWeek    TimeWindow = "week"
	WindowArchive TimeWindow = "archive"
)

// ContextItem is derived per request, never independently authored.
type ContextItem struct {
	Category       string                 `json:"category"`
	Relevance      RelevanceLevel         `json:"relevance"`
	RelevanceScore float64                `json:"relevance_score"`
	TimeWindow     TimeWindow             `json:"time_window"`
	Timestamp      time.Time              `json:"timestamp"`
	ExpiresAt      *time.Time             `json:"expires_at,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}
