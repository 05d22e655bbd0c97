package fetch

import (
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/types"
)

// Body excerpt length attached to upstream error annotations
const ExcerptBytes = 512

// Response is one completed HTTP exchange
type Response struct {
	URL         string
	StatusCode  int
	Body        []byte
	ContentType string
	Duration    time.Duration
}

// Failed reports whether the upstream answered with an error status
func (r *Response) Failed() bool {
	return r.StatusCode >= 400
}

// Excerpt returns the leading bytes of the body for diagnostics
func (r *Response) Excerpt() string {
	if len(r.Body) <= ExcerptBytes {
		return string(r.Body)
	}
	return string(r.Body[:ExcerptBytes])
}

// DetectMode resolves ModeAuto against the response: the declared
// Content-Type decides when present, else the body is sniffed.
// Undecidable content falls back to HTML, the broader parser.
func (r *Response) DetectMode(requested types.Mode) types.Mode {
	if requested != types.ModeAuto && requested != "" {
		return requested
	}

	declared := strings.ToLower(r.ContentType)
	switch {
	case strings.Contains(declared, "json"):
		return types.ModeAPI
	case strings.Contains(declared, "html") || strings.Contains(declared, "xml"):
		return types.ModeHTML
	}

	detected := mimetype.Detect(r.Body)
	if detected.Is("application/json") {
		return types.ModeAPI
	}
	return types.ModeHTML
}
