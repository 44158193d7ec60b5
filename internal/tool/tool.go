package tool

import (
	"golang.org/x/net/context"
)

// ToolArgs is a closed set of argument shapes, one per tool. Dispatch
// passes exactly one of these; tools reject anything else.
type ToolArgs interface {
	isToolArgs()
}

type CalculatorArgs struct {
	Expression string
}

type SearchArgs struct {
	Query string
}

type ScreenshotArgs struct {
	Prompt string
}

type ScriptArgs struct {
	Script string
}

type SelfModifyArgs struct {
	Proposal string
}

func (CalculatorArgs) isToolArgs() {}
func (SearchArgs) isToolArgs()     {}
func (ScreenshotArgs) isToolArgs() {}
func (ScriptArgs) isToolArgs()     {}
func (SelfModifyArgs) isToolArgs() {}

// ToolContext carries per-invocation data every tool may need.
type ToolContext struct {
	UserID    string
	RequestID string
}

// Tool executes one capability. Sensitive tools never run directly; the
// orchestrator parks them behind a verification code first.
type Tool interface {
	Name() string
	Sensitive() bool
	Execute(ctx context.Context, args ToolArgs, tc ToolContext) (string, error)
}
