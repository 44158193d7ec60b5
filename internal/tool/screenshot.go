package tool

import (
	"errors"

	"AssistantGolang/pkg/gemini"
	websocketPkg "AssistantGolang/pkg/websocket"

	"golang.org/x/net/context"
)

// Screenshot captures the user's screen through the desktop agent and runs
// the image through vision analysis. The agent may be offline; that is a
// normal condition, not an error.
type Screenshot struct {
	agent  websocketPkg.IAgentClient
	vision gemini.IGemini
}

func NewScreenshot(agent websocketPkg.IAgentClient, vision gemini.IGemini) *Screenshot {
	return &Screenshot{
		agent:  agent,
		vision: vision,
	}
}

func (s *Screenshot) Name() string    { return "screenshot" }
func (s *Screenshot) Sensitive() bool { return false }

func (s *Screenshot) Execute(ctx context.Context, args ToolArgs, _ ToolContext) (string, error) {
	shotArgs, ok := args.(ScreenshotArgs)
	if !ok {
		return "", errors.New("screenshot tool got unexpected arguments")
	}

	result := s.agent.RequestScreenshot()
	if result == nil || result.ImageBase64 == "" {
		return "I can't see the screen right now.", nil
	}

	description, err := s.vision.AnalyzeImage(ctx, result.ImageBase64, shotArgs.Prompt)
	if err != nil {
		return "", err
	}

	return description, nil
}
