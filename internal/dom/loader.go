package dom

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

const (
	// MaxHTMLSize limits HTML input to 10MB to prevent memory exhaustion
	MaxHTMLSize = 10 * 1024 * 1024
)

// Loader parses HTML strings into Documents
type Loader struct {
	sanitizer *bluemonday.Policy
	maxSize   int
}

// Option configures a Loader
type Option func(*Loader)

// WithSanitizer enables bluemonday sanitization before parsing
func WithSanitizer() Option {
	return func(l *Loader) {
		l.sanitizer = bluemonday.UGCPolicy()
	}
}

// WithMaxSize overrides the input size limit
func WithMaxSize(maxBytes int) Option {
	return func(l *Loader) {
		l.maxSize = maxBytes
	}
}

// NewLoader creates a loader with the given options
func NewLoader(opts ...Option) *Loader {
	l := &Loader{maxSize: MaxHTMLSize}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Validate checks HTML size and returns error if empty or too large
func (l *Loader) Validate(htmlStr string) error {
	if len(htmlStr) == 0 {
		return fmt.Errorf("html content required")
	}
	if len(htmlStr) > l.maxSize {
		return fmt.Errorf("html exceeds maximum size of %d bytes", l.maxSize)
	}
	return nil
}

// DetectCharset detects and returns charset from HTML bytes
func DetectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// Load parses HTML with automatic charset detection. The returned
// Document shares one node tree between CSS and XPath selection.
func (l *Loader) Load(htmlStr string) (*Document, error) {
	if err := l.Validate(htmlStr); err != nil {
		return nil, err
	}

	if l.sanitizer != nil {
		htmlStr = l.sanitizer.Sanitize(htmlStr)
	}

	data := []byte(htmlStr)
	detectedCharset := DetectCharset(data)

	reader := bytes.NewReader(data)
	utf8Reader, err := charset.NewReader(reader, "text/html; charset="+detectedCharset)
	if err != nil {
		// Fallback to direct parsing
		root, perr := htmlquery.Parse(strings.NewReader(htmlStr))
		if perr != nil {
			return nil, perr
		}
		return newDocument(root), nil
	}

	root, err := htmlquery.Parse(utf8Reader)
	if err != nil {
		return nil, err
	}
	return newDocument(root), nil
}
