package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type IGemini interface {
	GenerateReply(ctx context.Context, message string, contextLines []string) (string, error)
	AnalyzeImage(ctx context.Context, base64Image string, prompt string) (string, error)
}

type geminiClient struct {
	apiKey    string
	modelName string
	client    *genai.Client
}

func NewGeminiClient() (IGemini, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &geminiClient{
		apiKey:    apiKey,
		modelName: modelName,
		client:    client,
	}, nil
}

// GenerateReply produces conversational fallback text. contextLines carries
// the ranked context bundle so replies stay grounded in what the assistant
// knows about the user.
func (g *geminiClient) GenerateReply(ctx context.Context, message string, contextLines []string) (string, error) {
	model := g.client.GenerativeModel(g.modelName)

	var prompt strings.Builder
	prompt.WriteString("You are a concise personal assistant replying over SMS. Keep replies under three sentences.\n")
	if len(contextLines) > 0 {
		prompt.WriteString("Known about the user:\n")
		for _, line := range contextLines {
			prompt.WriteString("- ")
			prompt.WriteString(line)
			prompt.WriteString("\n")
		}
	}
	prompt.WriteString("User: ")
	prompt.WriteString(message)

	res, err := model.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		return "", err
	}

	return extractText(res)
}

func (g *geminiClient) AnalyzeImage(ctx context.Context, base64Image string, prompt string) (string, error) {
	imgData, err := base64.StdEncoding.DecodeString(base64Image)
	if err != nil {
		return "", errors.New("invalid base64 image data")
	}

	model := g.client.GenerativeModel(g.modelName)

	if prompt == "" {
		prompt = "Describe what is visible in this screenshot."
	}

	img := genai.ImageData("image/png", imgData)
	res, err := model.GenerateContent(ctx, genai.Text(prompt), img)
	if err != nil {
		return "", err
	}

	return extractText(res)
}

func extractText(res *genai.GenerateContentResponse) (string, error) {
	if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Gemini API")
	}

	text, ok := res.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", errors.New("unexpected response format from Gemini API")
	}

	return string(text), nil
}

func (g *geminiClient) Close() {
	if g.client != nil {
		g.client.Close()
	}
}
