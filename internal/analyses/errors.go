package analyses

import (
	"errors"

	"authenticity-backend/internal/evidence"
	"authenticity-backend/internal/llm"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrConfigMissing  = errors.New("service configuration missing")
	ErrInvalidRequest = errors.New("invalid analysis request")
)

// Caller-facing messages. Upstream details never reach the body.
const (
	MessageInternal        = "Analysis failed"
	MessageInternalDetails = "An error occurred during analysis. Please try again."
	MessageRateLimited     = "Rate limit exceeded. Please try again later."
	MessageCreditsDepleted = "Credits depleted. Please add credits to continue."
)

// failureKind names the terminal error path for logs and metrics.
func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrConfigMissing):
		return "config_missing"
	case errors.Is(err, evidence.ErrExhausted):
		return "evidence_exhausted"
	case errors.Is(err, llm.ErrRateLimited):
		return string(llm.KindRateLimited)
	case errors.Is(err, llm.ErrBillingRequired):
		return string(llm.KindBillingRequired)
	case errors.Is(err, llm.ErrMisconfigured):
		return string(llm.KindMisconfigured)
	default:
		return string(llm.KindTransport)
	}
}
