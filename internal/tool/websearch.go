package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/context"
)

const duckDuckGoEndpoint = "https://api.duckduckgo.com/"

// WebSearch answers factual queries through the DuckDuckGo instant-answer
// API. It returns the abstract when one exists, otherwise the first related
// topic.
type WebSearch struct {
	httpClient *http.Client
}

func NewWebSearch() *WebSearch {
	return &WebSearch{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebSearch) Name() string    { return "web_search" }
func (w *WebSearch) Sensitive() bool { return false }

type instantAnswer struct {
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	Answer        string `json:"Answer"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

func (w *WebSearch) Execute(ctx context.Context, args ToolArgs, _ ToolContext) (string, error) {
	searchArgs, ok := args.(SearchArgs)
	if !ok {
		return "", errors.New("web search needs a query")
	}

	query := strings.TrimSpace(searchArgs.Query)
	if query == "" {
		return "", errors.New("nothing to search for")
	}

	endpoint := fmt.Sprintf("%s?q=%s&format=json&no_html=1&skip_disambig=1",
		duckDuckGoEndpoint, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build search request: %w", err)
	}

	res, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned status %d", res.StatusCode)
	}

	var answer instantAnswer
	if err := json.NewDecoder(res.Body).Decode(&answer); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}

	switch {
	case answer.Answer != "":
		return answer.Answer, nil
	case answer.AbstractText != "":
		if answer.AbstractURL != "" {
			return fmt.Sprintf("%s (%s)", answer.AbstractText, answer.AbstractURL), nil
		}
		return answer.AbstractText, nil
	case len(answer.RelatedTopics) > 0 && answer.RelatedTopics[0].Text != "":
		return answer.RelatedTopics[0].Text, nil
	default:
		return fmt.Sprintf("I couldn't find anything useful for %q.", query), nil
	}
}
