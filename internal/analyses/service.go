package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"authenticity-backend/internal/content"
	"authenticity-backend/internal/evidence"
	"authenticity-backend/internal/llm"
	"authenticity-backend/internal/prompt"
	"authenticity-backend/internal/shared/metrics"
	"authenticity-backend/internal/shared/telemetry"
	"authenticity-backend/internal/verdict"
)

// EvidenceGatherer finds corroborating search results for an article.
type EvidenceGatherer interface {
	Gather(ctx context.Context, article string) ([]evidence.Item, int, error)
}

// Advisor renders recent reviewer corrections for a content type.
type Advisor interface {
	Advise(ctx context.Context, contentType content.Type) string
}

// Preflight reports missing configuration for a content type before any
// network call is made.
type Preflight func(contentType content.Type) error

// Service runs one analysis request end to end.
type Service struct {
	Preflight     Preflight
	Evidence      EvidenceGatherer
	Advisor       Advisor
	Prompts       prompt.Builder
	Model         llm.Invoker
	Store         *ResultStore
	VideoMaxBytes int64
}

// Analyze validates the request, gathers evidence for text, builds the prompt,
// calls the model and stores the verdict. Errors returned are configuration,
// validation, evidence exhaustion or classified upstream failures; every other
// path yields a verdict.
func (s *Service) Analyze(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	ct := req.ContentType

	if err := validate(req); err != nil {
		return Response{}, err
	}
	if s.Preflight != nil {
		if err := s.Preflight(ct); err != nil {
			return Response{}, fmt.Errorf("%w: %v", ErrConfigMissing, err)
		}
	}
	preview := content.Preview(ct, req.Content)

	if ct == content.TypeVideo && s.VideoMaxBytes > 0 && req.Media.Size() > s.VideoMaxBytes {
		v := verdict.OversizedVideo()
		telemetry.Info("analysis.video_oversized", map[string]any{
			"user_id": req.UserID,
			"bytes":   req.Media.Size(),
			"limit":   s.VideoMaxBytes,
		})
		return s.finish(ctx, req, preview, v, start), nil
	}

	var items []evidence.Item
	if ct == content.TypeText {
		var rank int
		var err error
		items, rank, err = s.Evidence.Gather(ctx, req.Content)
		if err != nil {
			if errors.Is(err, evidence.ErrExhausted) || errors.Is(err, evidence.ErrNoCredentials) {
				metrics.IncEvidenceExhausted()
			}
			return Response{}, fmt.Errorf("gather evidence: %w", err)
		}
		metrics.AddEvidenceFailovers(rank - 1)
		telemetry.Info("analysis.evidence", map[string]any{
			"user_id": req.UserID,
			"rank":    rank,
			"results": len(items),
		})
	}

	advisory := ""
	if s.Advisor != nil {
		advisory = s.Advisor.Advise(ctx, ct)
	}

	plan, err := s.Prompts.Build(prompt.Input{
		ContentType: ct,
		Text:        req.Content,
		Media:       req.Media,
		Evidence:    items,
		Advisory:    advisory,
	})
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	invokeStart := time.Now()
	raw, err := s.Model.Invoke(ctx, plan.Model, plan.Messages)
	if err != nil {
		return Response{}, fmt.Errorf("invoke model: %w", err)
	}
	telemetry.Info("analysis.model", map[string]any{
		"user_id":      req.UserID,
		"content_type": string(ct),
		"model":        plan.Model,
		"tier":         string(plan.Tier),
		"raw_len":      len(raw),
		"duration_ms":  time.Since(invokeStart).Milliseconds(),
	})

	res := verdict.Extract(raw)
	if !res.Parsed() {
		telemetry.Warn("analysis.extract", map[string]any{
			"content_type": string(ct),
			"reason":       res.Reason(),
		})
	}
	return s.finish(ctx, req, preview, verdict.ApplyPolicy(ct, res), start), nil
}

func (s *Service) finish(ctx context.Context, req Request, preview string, v verdict.Verdict, start time.Time) Response {
	v.Authenticity = verdict.Clamp(v.Authenticity)
	id := s.Store.Save(ctx, req.UserID, req.ContentType, preview, v)
	metrics.IncVerdict(string(req.ContentType), string(v.Status))
	metrics.ObserveAnalysisDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	return Response{Verdict: v, AnalysisID: id}
}

// History returns the caller's stored analyses.
func (s *Service) History(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	return s.Store.Repo.ListByUser(ctx, userID, limit, offset)
}

// Get returns one stored analysis owned by the caller.
func (s *Service) Get(ctx context.Context, userID, id string) (Record, error) {
	return s.Store.Repo.GetByID(ctx, userID, id)
}

func validate(req Request) error {
	switch req.ContentType {
	case content.TypeText:
		if strings.TrimSpace(req.Content) == "" {
			return fmt.Errorf("%w: content is required for text", ErrInvalidRequest)
		}
	case content.TypeImage, content.TypeVideo:
		if req.Media == nil {
			return fmt.Errorf("%w: fileData is required for %s", ErrInvalidRequest, req.ContentType)
		}
	case content.TypeAudio:
		if req.Media == nil && strings.TrimSpace(req.Content) == "" {
			return fmt.Errorf("%w: content or fileData is required for audio", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: %v", ErrInvalidRequest, content.ErrUnknownType)
	}
	return nil
}
