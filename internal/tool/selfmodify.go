package tool

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"AssistantGolang/internal/api/memory"
	"AssistantGolang/internal/entity"
	"AssistantGolang/pkg/utils"

	"golang.org/x/net/context"
)

// proposalStore is the slice of the memory layer SelfModify needs. The full
// memory service satisfies it.
type proposalStore interface {
	CreateMemory(ctx context.Context, req memory.CreateMemoryRequest) (entity.Memory, error)
}

// SelfModify records a behavior-change proposal as a memory instead of
// applying it. A human reviews recorded proposals out of band. Sensitive
// because a proposal describes a change to how the assistant acts.
type SelfModify struct {
	store proposalStore
	utils utils.IUtils
}

func NewSelfModify(store proposalStore, u utils.IUtils) *SelfModify {
	return &SelfModify{
		store: store,
		utils: u,
	}
}

func (s *SelfModify) Name() string    { return "self_modify" }
func (s *SelfModify) Sensitive() bool { return true }

func (s *SelfModify) Execute(ctx context.Context, args ToolArgs, tc ToolContext) (string, error) {
	modArgs, ok := args.(SelfModifyArgs)
	if !ok {
		return "", errors.New("self-modify needs a proposal")
	}

	proposal := strings.TrimSpace(modArgs.Proposal)
	if proposal == "" {
		return "", errors.New("empty proposal")
	}

	content := fmt.Sprintf("Proposed on %s: %s",
		time.Now().Format(time.RFC3339), proposal)

	_, err := s.store.CreateMemory(ctx, memory.CreateMemoryRequest{
		UserID:     tc.UserID,
		Category:   "self_modification",
		Importance: "high",
		Source:     "self_modify_tool",
		Content:    content,
		Summary:    s.utils.TruncateText(proposal, 120),
		Tags:       []string{"proposal"},
	})
	if err != nil {
		return "", fmt.Errorf("record proposal: %w", err)
	}

	return "I've recorded that proposal for review. It won't take effect until approved.", nil
}
