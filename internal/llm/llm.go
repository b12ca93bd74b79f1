package llm

import (
	"context"
	"strings"

	"authenticity-backend/internal/content"
)

// Role tags a message for the model.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Part is one piece of a message: text, or an inline media payload.
type Part struct {
	Text  string
	Media *content.Media
}

// TextPart builds a text part.
func TextPart(s string) Part { return Part{Text: s} }

// MediaPart builds an inline media part.
func MediaPart(m *content.Media) Part { return Part{Media: m} }

// IsMedia reports whether the part carries a media payload.
func (p Part) IsMedia() bool { return p.Media != nil }

// Message is an ordered list of parts sent under one role.
type Message struct {
	Role  Role
	Parts []Part
}

// Text joins the text parts of the message.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if p.IsMedia() || p.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// Invoker sends one request to a generative model and returns the raw text of
// the first response choice. Failures are *UpstreamError values.
type Invoker interface {
	Invoke(ctx context.Context, model string, messages []Message) (string, error)
}
