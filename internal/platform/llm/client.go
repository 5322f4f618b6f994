// Package llm is a chat-completion client for OpenAI-compatible providers.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sidkap/optadvisor/internal/domain"
)

// Provider base URLs. Any OpenAI-compatible endpoint works via an explicit
// base URL in the config.
const (
	openAIBaseURL   = "https://api.openai.com/v1"
	deepSeekBaseURL = "https://api.deepseek.com/v1"
)

const (
	defaultTemperature = 0.1
	defaultMaxTokens   = 4000
)

// Client implements domain.TextCompleter over the chat completions API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// Config selects the provider, credentials, and model. BaseURL overrides
// the provider's default endpoint when non-empty.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// NewClient creates a completion client. An unknown provider is an error so
// misconfiguration fails at startup, not mid-run.
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		switch cfg.Provider {
		case "openai":
			baseURL = openAIBaseURL
		case "deepseek":
			baseURL = deepSeekBaseURL
		default:
			return nil, fmt.Errorf("llm: unsupported provider %q: %w", cfg.Provider, domain.ErrValidation)
		}
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: missing API key for provider %q: %w", cfg.Provider, domain.ErrValidation)
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateResponse sends one chat completion request. The system message is
// optional.
func (c *Client) GenerateResponse(ctx context.Context, prompt, systemMessage string) (string, error) {
	var messages []chatMessage
	if systemMessage != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemMessage})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("llm: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: HTTP %d: %s: %w", resp.StatusCode, body, domain.ErrProvider)
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if chat.Error != nil {
		return "", fmt.Errorf("llm: provider error: %s: %w", chat.Error.Message, domain.ErrProvider)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("llm: empty completion: %w", domain.ErrProvider)
	}
	return chat.Choices[0].Message.Content, nil
}
