package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"authenticity-backend/internal/llm"
	"authenticity-backend/internal/shared/telemetry"
)

const (
	defaultTimeout = 120 * time.Second
	maxErrorBody   = 2048
)

// Client implements llm.Invoker against an OpenAI-compatible chat completions
// gateway.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a gateway client.
func NewClient(url, apiKey string) *Client {
	return &Client{
		url:    strings.TrimSpace(url),
		apiKey: strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// WithHTTPClient swaps the transport, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

type imageURL struct {
	URL string `json:"url"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Invoke sends messages to the gateway and returns the first choice's content.
// An empty content string is returned as-is.
func (c *Client) Invoke(ctx context.Context, model string, messages []llm.Message) (string, error) {
	if c.url == "" {
		return "", llm.Misconfigured("gateway url is empty")
	}
	if c.apiKey == "" {
		return "", llm.Misconfigured("gateway api key is empty")
	}
	if strings.TrimSpace(model) == "" {
		return "", llm.Misconfigured("model is empty")
	}

	payload, err := json.Marshal(chatRequest{Model: model, Messages: toChatMessages(messages)})
	if err != nil {
		return "", llm.TransportError(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", llm.TransportError(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", llm.TransportError(fmt.Errorf("gateway request timeout: %w", err))
		}
		return "", llm.TransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.TransportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", llm.Classify(resp.StatusCode, clip(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", llm.TransportError(fmt.Errorf("gateway response parse: %w", err))
	}
	if parsed.Error != nil {
		return "", &llm.UpstreamError{Kind: llm.KindTransport, Status: resp.StatusCode, Body: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 {
		return "", &llm.UpstreamError{Kind: llm.KindTransport, Status: resp.StatusCode, Body: "response missing choices"}
	}
	logUsage(model, parsed)
	return parsed.Choices[0].Message.Content, nil
}

// toChatMessages keeps single-text messages as plain strings and switches to
// the content-array form when media is attached.
func toChatMessages(messages []llm.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		if !hasMedia(m) {
			out = append(out, chatMessage{Role: string(m.Role), Content: m.Text()})
			continue
		}
		parts := make([]contentPart, 0, len(m.Parts))
		for _, p := range m.Parts {
			if p.IsMedia() {
				parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: p.Media.DataURI}})
				continue
			}
			if p.Text == "" {
				continue
			}
			parts = append(parts, contentPart{Type: "text", Text: p.Text})
		}
		out = append(out, chatMessage{Role: string(m.Role), Content: parts})
	}
	return out
}

func hasMedia(m llm.Message) bool {
	for _, p := range m.Parts {
		if p.IsMedia() {
			return true
		}
	}
	return false
}

func clip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}

func logUsage(model string, resp chatResponse) {
	fields := map[string]any{"model": model}
	if resp.Usage != nil {
		fields["prompt_tokens"] = resp.Usage.PromptTokens
		fields["completion_tokens"] = resp.Usage.CompletionTokens
		fields["total_tokens"] = resp.Usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

var _ llm.Invoker = (*Client)(nil)
