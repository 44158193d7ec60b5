package memory

import "AssistantGolang/pkg/response"

var (
	ErrMemoryNotFound    = response.NewError(404, "memory not found")
	ErrGoalNotFound      = response.NewError(404, "goal not found")
	ErrInvalidImportance = response.NewError(400, "invalid importance level")
	ErrInvalidCategory   = response.NewError(400, "invalid memory category")
	ErrInvalidSortField  = response.NewError(400, "invalid sort field")
	ErrSelfLink          = response.NewError(400, "memory cannot link to itself")
	ErrCreateMemory      = response.NewError(500, "failed to create memory")
	ErrUpdateMemory      = response.NewError(500, "failed to update memory")
)
