package memory

import (
	"time"

	"AssistantGolang/internal/entity"
)

// Categories the assistant files memories under. The allow-list keeps
// queries and ranking buckets predictable.
var ValidCategories = map[string]bool{
	"personal":          true,
	"preference":        true,
	"goal":              true,
	"schedule":          true,
	"contact":           true,
	"behavior":          true,
	"self_modification": true,
}

type CreateMemoryRequest struct {
	UserID     string     `json:"user_id" validate:"required"`
	Category   string     `json:"category" validate:"required"`
	Importance string     `json:"importance" validate:"omitempty,oneof=critical high medium low temporary"`
	Source     string     `json:"source"`
	Content    string     `json:"content" validate:"required"`
	Summary    string     `json:"summary"`
	Tags       []string   `json:"tags"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

// UpdateMemoryRequest carries only the fields to change; nil means keep.
type UpdateMemoryRequest struct {
	ID         string     `json:"id" validate:"required"`
	Category   *string    `json:"category"`
	Importance *string    `json:"importance"`
	Content    *string    `json:"content"`
	Summary    *string    `json:"summary"`
	Tags       *[]string  `json:"tags"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

type QueryMemoriesRequest struct {
	UserID        string     `json:"user_id" validate:"required"`
	Categories    []string   `json:"categories"`
	MinImportance string     `json:"min_importance" validate:"omitempty,oneof=critical high medium low temporary"`
	Tags          []string   `json:"tags"`
	Search        string     `json:"search"`
	CreatedAfter  *time.Time `json:"created_after"`
	CreatedBefore *time.Time `json:"created_before"`
	SortBy        string     `json:"sort_by" validate:"omitempty,oneof=createdAt updatedAt lastAccessedAt importance"`
	SortDesc      bool       `json:"sort_desc"`
	Offset        int        `json:"offset" validate:"min=0"`
	Limit         int        `json:"limit" validate:"min=0,max=200"`
}

type LinkMemoriesRequest struct {
	TargetID string `json:"target_id" validate:"required"`
}

type MemoryResponse struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Category         string     `json:"category"`
	Importance       string     `json:"importance"`
	Source           string     `json:"source,omitempty"`
	Content          string     `json:"content"`
	Summary          string     `json:"summary,omitempty"`
	Tags             []string   `json:"tags"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	LastAccessedAt   time.Time  `json:"last_accessed_at"`
	AccessCount      int        `json:"access_count"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	IsArchived       bool       `json:"is_archived"`
	RelatedMemoryIDs []string   `json:"related_memory_ids"`
}

type MemoryListResponse struct {
	Memories []MemoryResponse `json:"memories"`
	Total    int              `json:"total"`
}

func NewMemoryResponse(m entity.Memory) MemoryResponse {
	return MemoryResponse{
		ID:               m.ID,
		UserID:           m.UserID,
		Category:         m.Category,
		Importance:       string(m.Importance),
		Source:           m.Source,
		Content:          m.Content,
		Summary:          m.Summary,
		Tags:             m.Tags,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		LastAccessedAt:   m.LastAccessedAt,
		AccessCount:      m.AccessCount,
		ExpiresAt:        m.ExpiresAt,
		IsArchived:       m.IsArchived,
		RelatedMemoryIDs: m.RelatedMemoryIDs,
	}
}
