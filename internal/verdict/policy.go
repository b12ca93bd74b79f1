package verdict

import (
	"authenticity-backend/internal/content"
)

const (
	AudioMinScore = 40
	AudioMaxScore = 65

	AudioLimitation        = "Audio was assessed heuristically from its metadata only; no waveform or spectral analysis was performed."
	VideoFrameLimitation   = "Only a single representative frame of the video was examined; motion, audio track and temporal consistency were not analyzed."
	VideoOversizeDetails   = "The video is too large to analyze. A neutral score was assigned without inspecting its content."
	VideoOversizeLimitNote = "Video exceeds the maximum size accepted for analysis; no frames were examined."
)

var detailsLimit = map[content.Type]int{
	content.TypeText:  4000,
	content.TypeImage: 2000,
	content.TypeAudio: 1500,
	content.TypeVideo: 2000,
}

// ApplyPolicy collapses r into a Verdict and enforces the per content type
// rules: audio is always suspicious within [40,65]; video always carries the
// single-frame limitation; decoded details are bounded by type. Fallback
// details are kept verbatim.
func ApplyPolicy(t content.Type, r Result) Verdict {
	v := r.Verdict()
	v.Authenticity = Clamp(v.Authenticity)
	if r.Parsed() {
		if limit, ok := detailsLimit[t]; ok {
			v.Details = content.TruncateRunes(v.Details, limit)
		}
	}
	switch t {
	case content.TypeAudio:
		v.Authenticity = ClampTo(v.Authenticity, AudioMinScore, AudioMaxScore)
		v.Status = StatusSuspicious
		if v.Limitations == "" {
			v.Limitations = AudioLimitation
		}
	case content.TypeVideo:
		if v.Limitations == "" {
			v.Limitations = VideoFrameLimitation
		}
	}
	return v
}

// OversizedVideo is the fixed verdict for videos above the size threshold.
func OversizedVideo() Verdict {
	return Verdict{
		Authenticity: NeutralScore,
		Status:       StatusSuspicious,
		Details:      VideoOversizeDetails,
		Limitations:  VideoOversizeLimitNote,
	}
}
