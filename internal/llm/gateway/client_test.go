package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"authenticity-backend/internal/content"
	"authenticity-backend/internal/llm"
)

func newGateway(t *testing.T, status int, body string, capture *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInvokeReturnsFirstChoice(t *testing.T) {
	var req map[string]any
	srv := newGateway(t, http.StatusOK, `{"choices":[{"message":{"content":"{\"authenticity\":80}"}},{"message":{"content":"second"}}]}`, &req)

	got, err := NewClient(srv.URL, "test-key").Invoke(context.Background(), "google/gemini-2.5-flash", []llm.Message{
		{Role: llm.RoleSystem, Parts: []llm.Part{llm.TextPart("sys")}},
		{Role: llm.RoleUser, Parts: []llm.Part{llm.TextPart("hello")}},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != `{"authenticity":80}` {
		t.Fatalf("content = %q", got)
	}
	if req["model"] != "google/gemini-2.5-flash" {
		t.Fatalf("model = %v", req["model"])
	}
	msgs := req["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	first := msgs[0].(map[string]any)
	if first["role"] != "system" || first["content"] != "sys" {
		t.Fatalf("system message = %v", first)
	}
}

func TestInvokeSendsMediaAsContentArray(t *testing.T) {
	var req map[string]any
	srv := newGateway(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`, &req)

	media, err := content.ParseDataURI("data:image/png;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("ParseDataURI: %v", err)
	}
	_, err = NewClient(srv.URL, "test-key").Invoke(context.Background(), "m", []llm.Message{
		{Role: llm.RoleUser, Parts: []llm.Part{llm.TextPart("look"), llm.MediaPart(media)}},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	msg := req["messages"].([]any)[0].(map[string]any)
	parts, ok := msg["content"].([]any)
	if !ok || len(parts) != 2 {
		t.Fatalf("content parts = %v", msg["content"])
	}
	img := parts[1].(map[string]any)
	if img["type"] != "image_url" {
		t.Fatalf("part type = %v", img["type"])
	}
	if url := img["image_url"].(map[string]any)["url"]; url != "data:image/png;base64,aGVsbG8=" {
		t.Fatalf("image url = %v", url)
	}
}

func TestInvokeClassifiesStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, want: llm.ErrRateLimited},
		{name: "billing", status: http.StatusPaymentRequired, want: llm.ErrBillingRequired},
		{name: "server error", status: http.StatusInternalServerError, want: llm.ErrTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newGateway(t, tt.status, `{"error":{"message":"nope"}}`, nil)
			_, err := NewClient(srv.URL, "test-key").Invoke(context.Background(), "m", []llm.Message{
				{Role: llm.RoleUser, Parts: []llm.Part{llm.TextPart("x")}},
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var up *llm.UpstreamError
			if !errors.As(err, &up) || up.Status != tt.status {
				t.Fatalf("upstream error = %#v", up)
			}
		})
	}
}

func TestInvokeEmptyContentIsNotAnError(t *testing.T) {
	srv := newGateway(t, http.StatusOK, `{"choices":[{"message":{"content":""}}]}`, nil)
	got, err := NewClient(srv.URL, "test-key").Invoke(context.Background(), "m", nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != "" {
		t.Fatalf("content = %q, want empty", got)
	}
}

func TestInvokeMissingChoices(t *testing.T) {
	srv := newGateway(t, http.StatusOK, `{"choices":[]}`, nil)
	_, err := NewClient(srv.URL, "test-key").Invoke(context.Background(), "m", nil)
	if !errors.Is(err, llm.ErrTransport) {
		t.Fatalf("err = %v, want transport", err)
	}
}

func TestInvokeMisconfigured(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1", "").Invoke(context.Background(), "m", nil)
	if !errors.Is(err, llm.ErrMisconfigured) {
		t.Fatalf("err = %v, want misconfigured", err)
	}
}
