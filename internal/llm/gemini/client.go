package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"authenticity-backend/internal/llm"
	"authenticity-backend/internal/shared/telemetry"
)

// generator is the slice of the genai models service the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Invoker on the Gemini API.
type Client struct {
	models generator
}

// NewClient creates a Gemini-backed invoker.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{models: client.Models}, nil
}

// Invoke converts messages to Gemini contents and returns the response text.
// System messages become the system instruction.
func (c *Client) Invoke(ctx context.Context, model string, messages []llm.Message) (string, error) {
	name := ModelName(model)
	if name == "" {
		return "", llm.Misconfigured("model is empty")
	}
	system, contents := toContents(messages)
	var cfg *genai.GenerateContentConfig
	if system != nil {
		cfg = &genai.GenerateContentConfig{SystemInstruction: system}
	}

	resp, err := c.models.GenerateContent(ctx, name, contents, cfg)
	if err != nil {
		return "", classify(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &llm.UpstreamError{Kind: llm.KindTransport, Body: "response missing candidates"}
	}
	if resp.UsageMetadata != nil {
		telemetry.Info("llm.response", map[string]any{
			"model":             name,
			"prompt_tokens":     resp.UsageMetadata.PromptTokenCount,
			"completion_tokens": resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens":      resp.UsageMetadata.TotalTokenCount,
		})
	}
	return resp.Text(), nil
}

// ModelName strips the gateway vendor prefix ("google/gemini-2.5-pro").
func ModelName(model string) string {
	model = strings.TrimSpace(model)
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	return model
}

func toContents(messages []llm.Message) (*genai.Content, []*genai.Content) {
	var systemParts []*genai.Part
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			if text := m.Text(); text != "" {
				systemParts = append(systemParts, genai.NewPartFromText(text))
			}
			continue
		}
		parts := make([]*genai.Part, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch {
			case p.IsMedia():
				mime := p.Media.MIMEType
				if mime == "" {
					mime = "application/octet-stream"
				}
				parts = append(parts, genai.NewPartFromBytes(p.Media.Data, mime))
			case p.Text != "":
				parts = append(parts, genai.NewPartFromText(p.Text))
			}
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}
	var system *genai.Content
	if len(systemParts) > 0 {
		system = &genai.Content{Parts: systemParts}
	}
	return system, contents
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return withCause(llm.Classify(apiErr.Code, apiErr.Message), err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return withCause(llm.Classify(apiErrPtr.Code, apiErrPtr.Message), err)
	}
	return llm.TransportError(err)
}

func withCause(up *llm.UpstreamError, err error) *llm.UpstreamError {
	up.Err = err
	return up
}

var _ llm.Invoker = (*Client)(nil)
