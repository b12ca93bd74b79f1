package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"authenticity-backend/internal/content"
	"authenticity-backend/internal/evidence"
	"authenticity-backend/internal/llm"
)

var (
	//go:embed templates/system.txt
	systemTemplate string
	//go:embed templates/text.txt
	textTemplate string
	//go:embed templates/image.txt
	imageTemplate string
	//go:embed templates/audio.txt
	audioTemplate string
	//go:embed templates/video.txt
	videoTemplate string
)

var (
	ErrMissingText  = errors.New("text content is required")
	ErrMissingMedia = errors.New("media payload is required")
)

// Tier names the model class a content type is routed to.
type Tier string

const (
	TierFast   Tier = "fast"
	TierStrong Tier = "strong"
)

const noEvidence = "No evidence was found."

// Input is everything a prompt is assembled from.
type Input struct {
	ContentType content.Type
	Text        string
	Media       *content.Media
	Evidence    []evidence.Item
	Advisory    string
}

// Plan is a ready-to-send model request.
type Plan struct {
	Model    string
	Tier     Tier
	Messages []llm.Message
}

// Builder maps inputs to plans. It performs no I/O.
type Builder struct {
	FastModel   string
	StrongModel string
}

func NewBuilder(fastModel, strongModel string) Builder {
	return Builder{FastModel: fastModel, StrongModel: strongModel}
}

// TierFor returns the model tier used for a content type.
func TierFor(t content.Type) Tier {
	switch t {
	case content.TypeImage, content.TypeVideo:
		return TierStrong
	default:
		return TierFast
	}
}

// Build assembles the system and user messages for one analysis.
func (b Builder) Build(in Input) (Plan, error) {
	var user []llm.Part
	switch in.ContentType {
	case content.TypeText:
		if strings.TrimSpace(in.Text) == "" {
			return Plan{}, ErrMissingText
		}
		user = []llm.Part{llm.TextPart(render(textTemplate,
			"{{ADVISORY}}", advisoryBlock(in.Advisory),
			"{{ARTICLE}}", in.Text,
			"{{EVIDENCE}}", evidenceList(in.Evidence),
		))}
	case content.TypeImage, content.TypeVideo:
		if in.Media == nil {
			return Plan{}, ErrMissingMedia
		}
		tmpl := imageTemplate
		if in.ContentType == content.TypeVideo {
			tmpl = videoTemplate
		}
		user = []llm.Part{
			llm.TextPart(render(tmpl, "{{ADVISORY}}", advisoryBlock(in.Advisory))),
			llm.MediaPart(in.Media),
		}
	case content.TypeAudio:
		user = []llm.Part{llm.TextPart(render(audioTemplate,
			"{{ADVISORY}}", advisoryBlock(in.Advisory),
			"{{DESCRIPTION}}", audioDescription(in.Text, in.Media),
		))}
	default:
		return Plan{}, fmt.Errorf("%w: %q", content.ErrUnknownType, in.ContentType)
	}

	tier := TierFor(in.ContentType)
	model := b.FastModel
	if tier == TierStrong {
		model = b.StrongModel
	}
	return Plan{
		Model: model,
		Tier:  tier,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Parts: []llm.Part{llm.TextPart(strings.TrimSpace(systemTemplate))}},
			{Role: llm.RoleUser, Parts: user},
		},
	}, nil
}

func render(tmpl string, pairs ...string) string {
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(tmpl))
}

// evidenceList numbers items from 1 in the order they were returned.
func evidenceList(items []evidence.Item) string {
	if len(items) == 0 {
		return noEvidence
	}
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%d] %s\n    %s\n    %s", i+1, it.Title, it.URL, it.Snippet)
	}
	return b.String()
}

func advisoryBlock(advisory string) string {
	advisory = strings.TrimSpace(advisory)
	if advisory == "" {
		return ""
	}
	return "Past corrections from reviewers for this content type:\n" + advisory + "\n\n"
}

func audioDescription(text string, media *content.Media) string {
	var lines []string
	if media != nil {
		mime := media.MIMEType
		if mime == "" {
			mime = "unknown"
		}
		lines = append(lines, fmt.Sprintf("Format: %s", mime), fmt.Sprintf("Size: %d bytes", media.Size()))
	}
	if t := strings.TrimSpace(text); t != "" {
		lines = append(lines, "Description: "+t)
	}
	if len(lines) == 0 {
		return "No description provided."
	}
	return strings.Join(lines, "\n")
}
