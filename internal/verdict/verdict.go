// Package verdict holds the authenticity assessment returned to callers and
// the rules for turning free-form model output into one.
package verdict

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"authenticity-backend/internal/evidence"
)

// Status is the label attached to a verdict.
type Status string

const (
	StatusAuthentic  Status = "authentic"
	StatusSuspicious Status = "suspicious"
	StatusFake       Status = "fake"
	StatusError      Status = "error"
)

// ClaimStatus is the outcome for one claim checked against evidence.
type ClaimStatus string

const (
	ClaimVerified     ClaimStatus = "verified"
	ClaimContradicted ClaimStatus = "contradicted"
	ClaimUnverified   ClaimStatus = "unverified"
)

const (
	MinScore     = 0
	MaxScore     = 100
	NeutralScore = 50

	authenticThreshold  = 70
	suspiciousThreshold = 30
)

// SourceAssessment is an evidence item with a model-assigned credibility rating.
type SourceAssessment struct {
	evidence.Item
	CredibilityScore  int    `json:"credibilityScore"`
	CredibilityReason string `json:"credibilityReason,omitempty"`
}

// ClaimAssessment links one extracted claim to the sources that support or contradict it.
type ClaimAssessment struct {
	Claim        string      `json:"claim"`
	Verdict      ClaimStatus `json:"verdict"`
	Explanation  string      `json:"explanation,omitempty"`
	EvidenceRefs []int       `json:"evidenceIndices,omitempty"`
}

// Verdict is the structured authenticity assessment.
//
// Status is reported by the model and is not cross-checked against
// Authenticity; StatusForScore is the shared convention for consumers that
// need to derive one from the other.
type Verdict struct {
	Authenticity int                `json:"authenticity"`
	Status       Status             `json:"status"`
	Details      string             `json:"details"`
	Claims       []ClaimAssessment  `json:"claims,omitempty"`
	Sources      []SourceAssessment `json:"sources,omitempty"`
	Limitations  string             `json:"limitations,omitempty"`
	Indicators   []string           `json:"manipulationIndicators,omitempty"`
}

// StatusForScore maps a score onto the fixed convention: >=70 authentic,
// 30-69 suspicious, <30 fake.
func StatusForScore(score int) Status {
	switch {
	case score >= authenticThreshold:
		return StatusAuthentic
	case score >= suspiciousThreshold:
		return StatusSuspicious
	default:
		return StatusFake
	}
}

// Clamp bounds a score to [0,100].
func Clamp(score int) int {
	return ClampTo(score, MinScore, MaxScore)
}

// ClampTo bounds a score to [lo,hi].
func ClampTo(score, lo, hi int) int {
	if score < lo {
		return lo
	}
	if score > hi {
		return hi
	}
	return score
}

// ParseStatus normalizes a status label; ok is false for unknown labels.
func ParseStatus(raw string) (Status, bool) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusAuthentic, StatusSuspicious, StatusFake:
		return s, true
	default:
		return "", false
	}
}

// score decodes numbers, numeric strings and floats; floats are rounded.
type score struct {
	value int
	set   bool
}

func (s *score) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	raw = strings.Trim(raw, `"`)
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return err
	}
	if math.IsNaN(f) {
		return fmt.Errorf("score is not a number: %s", raw)
	}
	switch {
	case f > float64(1<<31-1):
		s.value = 1<<31 - 1
	case f < -float64(1<<31):
		s.value = -(1 << 31)
	default:
		if f >= 0 {
			s.value = int(f + 0.5)
		} else {
			s.value = int(f - 0.5)
		}
	}
	s.set = true
	return nil
}

var _ json.Unmarshaler = (*score)(nil)
