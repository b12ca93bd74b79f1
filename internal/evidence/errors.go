package evidence

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExhausted is returned when every credential failed once.
	ErrExhausted = errors.New("all search credentials exhausted")
	// ErrNoCredentials is returned when the credential list is empty.
	ErrNoCredentials = errors.New("no search credentials configured")
)

// AttemptError records why one credential failed.
type AttemptError struct {
	Rank int
	Err  error
}

// ExhaustedError carries the per-credential failures behind ErrExhausted.
type ExhaustedError struct {
	Attempts []AttemptError
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("rank %d: %v", a.Rank, a.Err))
	}
	return ErrExhausted.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ExhaustedError) Unwrap() error { return ErrExhausted }

// StatusError is a non-success HTTP response from the search provider.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search http status %d: %s", e.Status, e.Body)
}
