// Package content describes what a caller submits for analysis.
package content

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Type is the kind of content under analysis.
type Type string

const (
	TypeText  Type = "text"
	TypeImage Type = "image"
	TypeAudio Type = "audio"
	TypeVideo Type = "video"
)

const previewMaxRunes = 200

var (
	ErrUnknownType = errors.New("unknown content type")
	ErrBadDataURI  = errors.New("invalid data uri")
)

var previewPolicy = bluemonday.StrictPolicy()

// ParseType validates a client supplied content type.
func ParseType(raw string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(raw))); t {
	case TypeText, TypeImage, TypeAudio, TypeVideo:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, raw)
	}
}

// Media is a decoded binary payload with its declared MIME type.
type Media struct {
	MIMEType string
	Data     []byte
	// DataURI is the original encoded form, forwarded to model gateways that accept it inline.
	DataURI string
}

// Size returns the decoded payload length in bytes.
func (m *Media) Size() int64 {
	if m == nil {
		return 0
	}
	return int64(len(m.Data))
}

// ParseDataURI decodes "data:<mime>;base64,<payload>". A bare base64 string is
// accepted with an empty MIME type.
func ParseDataURI(raw string) (*Media, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrBadDataURI)
	}
	mime := ""
	payload := raw
	if strings.HasPrefix(raw, "data:") {
		header, body, ok := strings.Cut(raw, ",")
		if !ok {
			return nil, fmt.Errorf("%w: missing payload", ErrBadDataURI)
		}
		meta := strings.TrimPrefix(header, "data:")
		if !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("%w: only base64 payloads are supported", ErrBadDataURI)
		}
		mime = strings.TrimSuffix(meta, ";base64")
		payload = body
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDataURI, err)
	}
	uri := raw
	if !strings.HasPrefix(uri, "data:") {
		uri = "data:application/octet-stream;base64," + payload
	}
	return &Media{MIMEType: mime, Data: data, DataURI: uri}, nil
}

// StripMarkup removes HTML tags and returns plain text.
func StripMarkup(s string) string {
	return strings.TrimSpace(html.UnescapeString(previewPolicy.Sanitize(s)))
}

// Preview returns the stored preview for an analysis: the first 200 characters
// of text content with markup removed, or a fixed placeholder for media.
func Preview(t Type, text string) string {
	if t != TypeText {
		return "[" + string(t) + " file]"
	}
	return TruncateRunes(StripMarkup(text), previewMaxRunes)
}

// TruncateRunes cuts s to at most n runes.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
