package tool

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/net/context"
)

const (
	scriptTimeout   = 30 * time.Second
	scriptOutputCap = 2000
)

// ScriptRunner executes shell scripts on the host. It is sensitive: the
// orchestrator requires a verification code before Dispatch ever reaches
// this tool.
type ScriptRunner struct{}

func NewScriptRunner() *ScriptRunner {
	return &ScriptRunner{}
}

func (s *ScriptRunner) Name() string    { return "run_script" }
func (s *ScriptRunner) Sensitive() bool { return true }

func (s *ScriptRunner) Execute(ctx context.Context, args ToolArgs, _ ToolContext) (string, error) {
	scriptArgs, ok := args.(ScriptArgs)
	if !ok {
		return "", errors.New("script runner needs a script")
	}

	script := strings.TrimSpace(scriptArgs.Script)
	if script == "" {
		return "", errors.New("nothing to run")
	}

	runCtx, cancel := context.WithTimeout(ctx, scriptTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "bash", "-c", script)
	output, err := cmd.CombinedOutput()

	text := strings.TrimSpace(string(output))
	if len(text) > scriptOutputCap {
		text = text[:scriptOutputCap] + "\n... (output truncated)"
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("script timed out after %s", scriptTimeout)
	}
	if err != nil {
		if text == "" {
			return "", fmt.Errorf("script failed: %w", err)
		}
		return "", fmt.Errorf("script failed: %s", text)
	}

	if text == "" {
		return "Script finished with no output.", nil
	}
	return text, nil
}
