package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/naschastye/salesim/internal/domain"
)

// DeepSeekClient talks to the DeepSeek chat-completions API. Any transport or
// API failure wraps domain.ErrResponderUnavailable so callers can fall back to
// canned replies instead of failing the turn.
type DeepSeekClient struct {
	apiKey  string
	baseURL string
	model   string
	httpc   *http.Client
}

func NewDeepSeekClient(apiKey, baseURL, model string, timeout time.Duration) *DeepSeekClient {
	if model == "" {
		model = "deepseek-chat"
	}
	return &DeepSeekClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpc:   &http.Client{Timeout: timeout},
	}
}

type chatCompletionRequest struct {
	Model       string               `json:"model"`
	Messages    []domain.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature,omitempty"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *DeepSeekClient) Chat(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", domain.ErrResponderUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", domain.ErrResponderUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrResponderUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrResponderUnavailable, res.StatusCode, snippet)
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrResponderUnavailable, err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrResponderUnavailable)
	}
	return parsed.Choices[0].Message.Content, nil
}
