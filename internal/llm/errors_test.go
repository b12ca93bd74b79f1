package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{status: http.StatusTooManyRequests, want: ErrRateLimited},
		{status: http.StatusPaymentRequired, want: ErrBillingRequired},
		{status: http.StatusInternalServerError, want: ErrTransport},
		{status: http.StatusUnauthorized, want: ErrTransport},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := fmt.Errorf("invoke: %w", Classify(tt.status, "raw"))
			assert.ErrorIs(t, err, tt.want)

			var up *UpstreamError
			assert.True(t, errors.As(err, &up))
			assert.Equal(t, tt.status, up.Status)
			assert.Equal(t, "raw", up.Body)
		})
	}
}

func TestMessageText(t *testing.T) {
	m := Message{Role: RoleUser, Parts: []Part{TextPart("a"), MediaPart(nil), {Media: nil, Text: ""}, TextPart("b")}}
	assert.Equal(t, "a\n\nb", m.Text())
}
