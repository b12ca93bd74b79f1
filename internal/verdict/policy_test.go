package verdict

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"authenticity-backend/internal/content"
)

func TestApplyPolicyAudioBand(t *testing.T) {
	for _, raw := range []string{
		`{"authenticity": 95, "status": "authentic"}`,
		`{"authenticity": 3, "status": "fake"}`,
		`{"authenticity": 55, "status": "suspicious", "limitations": "custom"}`,
		`not json at all`,
	} {
		v := ApplyPolicy(content.TypeAudio, Extract(raw))
		assert.Equal(t, StatusSuspicious, v.Status, raw)
		assert.GreaterOrEqual(t, v.Authenticity, AudioMinScore, raw)
		assert.LessOrEqual(t, v.Authenticity, AudioMaxScore, raw)
		assert.NotEmpty(t, v.Limitations, raw)
	}
}

func TestApplyPolicyVideoLimitation(t *testing.T) {
	v := ApplyPolicy(content.TypeVideo, Extract(`{"authenticity": 81, "status": "authentic"}`))
	assert.Equal(t, VideoFrameLimitation, v.Limitations)
	assert.Equal(t, StatusAuthentic, v.Status)
}

func TestApplyPolicyBoundsParsedDetailsOnly(t *testing.T) {
	long := strings.Repeat("a", 5000)
	parsed := ApplyPolicy(content.TypeImage, Extract(`{"authenticity": 10, "details": "`+long+`"}`))
	assert.Len(t, parsed.Details, 2000)

	fallback := ApplyPolicy(content.TypeImage, Extract(long))
	assert.Equal(t, long, fallback.Details)
	assert.Equal(t, 50, fallback.Authenticity)
}

func TestApplyPolicyTextKeepsModelStatus(t *testing.T) {
	v := ApplyPolicy(content.TypeText, Extract(`{"authenticity": 40, "status": "fake"}`))
	assert.Equal(t, StatusFake, v.Status)
	assert.Equal(t, 40, v.Authenticity)
}

func TestOversizedVideo(t *testing.T) {
	v := OversizedVideo()
	assert.Equal(t, 50, v.Authenticity)
	assert.Equal(t, StatusSuspicious, v.Status)
	assert.Equal(t, VideoOversizeLimitNote, v.Limitations)
}
