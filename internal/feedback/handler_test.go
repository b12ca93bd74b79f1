package feedback

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"authenticity-backend/internal/content"
)

type stubLookup struct {
	summary AnalysisSummary
	err     error
	calls   int
}

func (s *stubLookup) LookupAnalysis(_ context.Context, _ string, _ string) (AnalysisSummary, error) {
	s.calls++
	return s.summary, s.err
}

func feedbackRouter(repo Repo) *gin.Engine {
	return feedbackRouterWithLookup(repo, nil)
}

func feedbackRouterWithLookup(repo Repo, lookup AnalysisLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	NewHandler(repo, lookup).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestCreateFeedback(t *testing.T) {
	repo := NewMemoryRepo()
	body := `{"contentType":"image","isCorrect":false,"userVerdict":"Real","priorScore":91,"comment":"<b>my</b> photo"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	feedbackRouter(repo).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	got, err := repo.ListIncorrect(context.Background(), content.TypeImage, 10)
	if err != nil {
		t.Fatalf("ListIncorrect: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one record, got %d", len(got))
	}
	if got[0].UserID != "user-1" || got[0].Comment != "my photo" || got[0].UserVerdict != VerdictReal {
		t.Fatalf("unexpected record %+v", got[0])
	}
}

func TestCreateFeedbackValidation(t *testing.T) {
	cases := map[string]string{
		"bad type":     `{"contentType":"pdf","isCorrect":false,"userVerdict":"real","priorScore":1}`,
		"no isCorrect": `{"contentType":"text","userVerdict":"real","priorScore":1}`,
		"bad verdict":  `{"contentType":"text","isCorrect":false,"userVerdict":"maybe","priorScore":1}`,
		"bad score":    `{"contentType":"text","isCorrect":false,"userVerdict":"real","priorScore":101}`,
		"bad id":       `{"analysisId":"x","contentType":"text","isCorrect":false,"userVerdict":"real","priorScore":1}`,
		"not json":     `{`,
	}
	for name, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		feedbackRouter(NewMemoryRepo()).ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, resp.Code)
		}
	}
}

const analysisUUID = "7f1c2a9e-3b4d-4e5f-8a6b-1c2d3e4f5a6b"

func postFeedback(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateFeedbackDefaultsFromAnalysis(t *testing.T) {
	repo := NewMemoryRepo()
	lookup := &stubLookup{summary: AnalysisSummary{ContentType: content.TypeVideo, Score: 82}}
	resp := postFeedback(feedbackRouterWithLookup(repo, lookup),
		`{"analysisId":"`+analysisUUID+`","isCorrect":false,"userVerdict":"fake","comment":"deepfake"}`)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	got, err := repo.ListIncorrect(context.Background(), content.TypeVideo, 10)
	if err != nil {
		t.Fatalf("ListIncorrect: %v", err)
	}
	if len(got) != 1 || got[0].PriorScore != 82 || got[0].AnalysisID != analysisUUID {
		t.Fatalf("unexpected records %+v", got)
	}
	if lookup.calls != 1 {
		t.Fatalf("expected one lookup, got %d", lookup.calls)
	}
}

func TestCreateFeedbackForeignAnalysis(t *testing.T) {
	lookup := &stubLookup{err: ErrAnalysisNotFound}
	resp := postFeedback(feedbackRouterWithLookup(NewMemoryRepo(), lookup),
		`{"analysisId":"`+analysisUUID+`","contentType":"image","isCorrect":false,"userVerdict":"fake","priorScore":90}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestCreateFeedbackTypeMismatch(t *testing.T) {
	lookup := &stubLookup{summary: AnalysisSummary{ContentType: content.TypeImage, Score: 40}}
	resp := postFeedback(feedbackRouterWithLookup(NewMemoryRepo(), lookup),
		`{"analysisId":"`+analysisUUID+`","contentType":"text","isCorrect":false,"userVerdict":"real"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
