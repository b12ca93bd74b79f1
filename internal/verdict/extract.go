package verdict

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"authenticity-backend/internal/evidence"
)

var (
	ErrNoObject        = errors.New("no json object in model output")
	ErrMissingScore    = errors.New("model output has no authenticity score")
	errExtractionPanic = errors.New("extraction panicked")
)

// Result is the outcome of parsing model output: either a decoded verdict or
// a fallback carrying the raw text.
type Result struct {
	verdict Verdict
	raw     string
	parsed  bool
	reason  error
}

// Ok wraps a decoded verdict.
func Ok(v Verdict, raw string) Result {
	return Result{verdict: v, raw: raw, parsed: true}
}

// Fallback wraps raw text that could not be decoded.
func Fallback(raw string, reason error) Result {
	return Result{raw: raw, reason: reason}
}

// Parsed reports whether the model output decoded into a verdict.
func (r Result) Parsed() bool { return r.parsed }

// Reason is the decode failure for a fallback result.
func (r Result) Reason() error { return r.reason }

// Verdict collapses the result: decoded verdicts are returned as is,
// fallbacks become the neutral suspicious verdict carrying the raw text.
func (r Result) Verdict() Verdict {
	if r.parsed {
		return r.verdict
	}
	return Degraded(r.raw)
}

// Degraded is the verdict used whenever model output cannot be decoded.
func Degraded(raw string) Verdict {
	return Verdict{
		Authenticity: NeutralScore,
		Status:       StatusSuspicious,
		Details:      raw,
	}
}

type wireSource struct {
	Title             string `json:"title"`
	URL               string `json:"url"`
	Link              string `json:"link"`
	Snippet           string `json:"snippet"`
	CredibilityScore  score  `json:"credibilityScore"`
	CredibilityReason string `json:"credibilityReason"`
}

type wireClaim struct {
	Claim           string `json:"claim"`
	Verdict         string `json:"verdict"`
	Explanation     string `json:"explanation"`
	EvidenceIndices []int  `json:"evidenceIndices"`
}

type wireVerdict struct {
	Authenticity           score        `json:"authenticity"`
	Status                 string       `json:"status"`
	Details                string       `json:"details"`
	Claims                 []wireClaim  `json:"claims"`
	Sources                []wireSource `json:"sources"`
	Limitations            string       `json:"limitations"`
	ManipulationIndicators []string     `json:"manipulationIndicators"`
}

// Extract decodes the first balanced top-level JSON object in raw. It never
// returns an error and never panics: anything that does not decode becomes a
// Fallback result.
func Extract(raw string) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Fallback(raw, fmt.Errorf("%w: %v", errExtractionPanic, rec))
		}
	}()

	obj, ok := firstObject(raw)
	if !ok {
		return Fallback(raw, ErrNoObject)
	}
	var w wireVerdict
	if err := json.Unmarshal([]byte(obj), &w); err != nil {
		return Fallback(raw, fmt.Errorf("decode verdict: %w", err))
	}
	if !w.Authenticity.set {
		return Fallback(raw, ErrMissingScore)
	}
	return Ok(w.toVerdict(), raw)
}

func (w wireVerdict) toVerdict() Verdict {
	v := Verdict{
		Authenticity: Clamp(w.Authenticity.value),
		Details:      strings.TrimSpace(w.Details),
		Limitations:  strings.TrimSpace(w.Limitations),
	}
	if st, ok := ParseStatus(w.Status); ok {
		v.Status = st
	} else {
		v.Status = StatusForScore(v.Authenticity)
	}
	for _, s := range w.Sources {
		url := s.URL
		if url == "" {
			url = s.Link
		}
		v.Sources = append(v.Sources, SourceAssessment{
			Item:              evidence.Item{Title: s.Title, URL: url, Snippet: s.Snippet},
			CredibilityScore:  Clamp(s.CredibilityScore.value),
			CredibilityReason: s.CredibilityReason,
		})
	}
	for _, c := range w.Claims {
		v.Claims = append(v.Claims, ClaimAssessment{
			Claim:        c.Claim,
			Verdict:      parseClaimStatus(c.Verdict),
			Explanation:  c.Explanation,
			EvidenceRefs: validRefs(c.EvidenceIndices, len(v.Sources)),
		})
	}
	for _, ind := range w.ManipulationIndicators {
		if ind = strings.TrimSpace(ind); ind != "" {
			v.Indicators = append(v.Indicators, ind)
		}
	}
	return v
}

func parseClaimStatus(raw string) ClaimStatus {
	switch s := ClaimStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case ClaimVerified, ClaimContradicted:
		return s
	default:
		return ClaimUnverified
	}
}

// validRefs keeps in-range indices in their original order. With no sources
// there is nothing to point at.
func validRefs(refs []int, n int) []int {
	var out []int
	for _, r := range refs {
		if r >= 0 && r < n {
			out = append(out, r)
		}
	}
	return out
}

// firstObject returns the first balanced top-level {...} span in s, skipping
// braces inside JSON strings.
func firstObject(s string) (string, bool) {
	depth := 0
	start := -1
	inString := false
	escape := false
	for i := 0; i < len(s); i++ {
		b := s[i]
		if escape {
			escape = false
			continue
		}
		if inString {
			switch b {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}
