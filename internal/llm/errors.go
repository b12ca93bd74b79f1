package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an upstream model failure.
type Kind string

const (
	KindRateLimited     Kind = "rate_limited"
	KindBillingRequired Kind = "billing_required"
	KindTransport       Kind = "transport"
	KindMisconfigured   Kind = "misconfigured"
)

var (
	ErrRateLimited     = errors.New("model gateway rate limited")
	ErrBillingRequired = errors.New("model gateway requires payment")
	ErrTransport       = errors.New("model gateway request failed")
	ErrMisconfigured   = errors.New("model client misconfigured")
)

// UpstreamError is a classified model failure. Body holds raw diagnostic text
// for logs; it is never shown to callers.
type UpstreamError struct {
	Kind   Kind
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("model %s", e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (http %d)", e.Status)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.Kind == KindRateLimited
	case ErrBillingRequired:
		return e.Kind == KindBillingRequired
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrMisconfigured:
		return e.Kind == KindMisconfigured
	}
	return false
}

// Classify maps an upstream HTTP status to a failure kind: 429 rate limited,
// 402 billing required, anything else transport.
func Classify(status int, body string) *UpstreamError {
	kind := KindTransport
	switch status {
	case http.StatusTooManyRequests:
		kind = KindRateLimited
	case http.StatusPaymentRequired:
		kind = KindBillingRequired
	}
	return &UpstreamError{Kind: kind, Status: status, Body: body}
}

// TransportError wraps a failure that never produced an HTTP status.
func TransportError(err error) *UpstreamError {
	return &UpstreamError{Kind: KindTransport, Err: err}
}

// Misconfigured reports a client that cannot issue requests.
func Misconfigured(reason string) *UpstreamError {
	return &UpstreamError{Kind: KindMisconfigured, Body: reason}
}
