package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// anthropicVersion pins the Messages API revision this client speaks.
const anthropicVersion = "2023-06-01"

// Client is a client for the Anthropic Messages API.
type Client struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	client    *http.Client
}

// NewClient creates a new generation client.
func NewClient(baseURL, apiKey, model string, maxTokens int) *Client {
	return &Client{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		Model:     model,
		MaxTokens: maxTokens,
		client:    http.DefaultClient,
	}
}

// MessagesRequest represents the request payload for the Messages API.
type MessagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

// MessagesResponse represents the response from the Messages API.
type MessagesResponse struct {
	ID         string         `json:"id"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// Generate sends a system prompt and a user prompt to the model and returns
// the generated text. Transient upstream failures (timeouts, rate limits,
// 5xx) are retried once with backoff; anything else fails immediately.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	url := fmt.Sprintf("%s/v1/messages", c.BaseURL)

	payload := MessagesRequest{
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		System:    system,
		Messages: []Message{
			{
				Role:    "user",
				Content: user,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var text string
	err = doWithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("x-api-key", c.APIKey)
		req.Header.Set("anthropic-version", anthropicVersion)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to send request: %w", err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode != http.StatusOK {
			raw, _ := io.ReadAll(resp.Body)
			return &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
		}

		var msgResp MessagesResponse
		if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}

		var sb strings.Builder
		for _, block := range msgResp.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		if sb.Len() == 0 {
			return fmt.Errorf("no text content returned")
		}

		text = sb.String()
		return nil
	})
	if err != nil {
		return "", err
	}

	return text, nil
}
