package feedback

import (
	"context"
	"fmt"
	"strings"

	"authenticity-backend/internal/content"
	"authenticity-backend/internal/shared/telemetry"
)

// DefaultLimit bounds how many corrections are folded into a prompt.
const DefaultLimit = 10

// priorRealThreshold splits prior scores into "real" and "fake" labels.
const priorRealThreshold = 70

// Advisor turns recent corrections into a prompt block.
type Advisor struct {
	Repo  Repo
	Limit int
}

func NewAdvisor(repo Repo, limit int) *Advisor {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Advisor{Repo: repo, Limit: limit}
}

// Advise returns one line per recent incorrect verdict for the content type,
// newest first. Lookup failures yield an empty block.
func (a *Advisor) Advise(ctx context.Context, contentType content.Type) string {
	if a == nil || a.Repo == nil {
		return ""
	}
	records, err := a.Repo.ListIncorrect(ctx, contentType, a.Limit)
	if err != nil {
		telemetry.Warn("feedback.lookup_failed", map[string]any{
			"content_type": string(contentType),
			"error":        err,
		})
		return ""
	}
	if len(records) > a.Limit {
		records = records[:a.Limit]
	}
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, Line(rec))
	}
	return strings.Join(lines, "\n")
}

// Line renders a single correction.
func Line(rec Record) string {
	prior := VerdictFake
	if rec.PriorScore > priorRealThreshold {
		prior = VerdictReal
	}
	return fmt.Sprintf("AI said %s but corrected to %s. Reason: %s", prior, rec.UserVerdict, rec.Comment)
}
