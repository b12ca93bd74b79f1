package evidence

import (
	"context"
)

// TryInOrder calls attempt once per credential in slice order and returns the
// first success together with the rank that produced it. Later credentials are
// never tried after a success. When every attempt fails the error is an
// *ExhaustedError wrapping ErrExhausted.
func TryInOrder[T any](ctx context.Context, creds []Credential, attempt func(ctx context.Context, cred Credential) (T, error)) (T, int, error) {
	var zero T
	if len(creds) == 0 {
		return zero, 0, ErrNoCredentials
	}
	failures := make([]AttemptError, 0, len(creds))
	for _, cred := range creds {
		if err := ctx.Err(); err != nil {
			failures = append(failures, AttemptError{Rank: cred.Rank, Err: err})
			break
		}
		result, err := attempt(ctx, cred)
		if err == nil {
			return result, cred.Rank, nil
		}
		failures = append(failures, AttemptError{Rank: cred.Rank, Err: err})
	}
	return zero, 0, &ExhaustedError{Attempts: failures}
}
