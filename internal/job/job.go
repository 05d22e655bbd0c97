package job

import (
	"fmt"
	"net/url"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/types"
)

// Job is one named set of sources to extract
type Job struct {
	Name    string   `json:"name" yaml:"name" toml:"name"`
	Sources []Source `json:"sources" yaml:"sources" toml:"sources"`

	// AllowPatterns restricts which continuation URLs may be followed.
	// Globs match against the full URL; empty means follow everything.
	AllowPatterns []string `json:"allow_patterns,omitempty" yaml:"allow_patterns,omitempty" toml:"allow_patterns,omitempty"`

	// Transform is an optional JavaScript hook. It must define
	// transform(record) and runs once per extracted record.
	Transform string `json:"transform,omitempty" yaml:"transform,omitempty" toml:"transform,omitempty"`
}

// Allows reports whether a continuation URL passes the allow patterns
func (j *Job) Allows(rawURL string) bool {
	if len(j.AllowPatterns) == 0 {
		return true
	}
	for _, pattern := range j.AllowPatterns {
		if ok, _ := doublestar.Match(pattern, rawURL); ok {
			return true
		}
	}
	return false
}

// Source is one starting URL with its extraction parameters
type Source struct {
	URL  string     `json:"url" yaml:"url" toml:"url"`
	Mode types.Mode `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`

	// MaxPages caps the continuation chain; 0 uses the run default
	MaxPages int `json:"max_pages,omitempty" yaml:"max_pages,omitempty" toml:"max_pages,omitempty"`

	Hints types.Hints `json:"hints,omitempty" yaml:"hints,omitempty" toml:"hints,omitempty"`
}

var paginationValues = map[string]bool{
	"":            true,
	"auto":        true,
	"none":        true,
	"next_link":   true,
	"total_pages": true,
	"offset":      true,
	"page_param":  true,
}

// Validate checks the job and every source
func (j *Job) Validate() error {
	if j.Name == "" {
		return fmt.Errorf("job name required")
	}
	if len(j.Sources) == 0 {
		return fmt.Errorf("job %q has no sources", j.Name)
	}
	for _, pattern := range j.AllowPatterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("job %q allow pattern %q is not a valid glob", j.Name, pattern)
		}
	}
	for i := range j.Sources {
		if err := j.Sources[i].Validate(); err != nil {
			return fmt.Errorf("job %q source %d: %w", j.Name, i, err)
		}
	}
	return nil
}

// Validate checks one source definition
func (s *Source) Validate() error {
	if s.URL == "" {
		return fmt.Errorf("url required")
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("url %q: %w", s.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must be http or https", s.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", s.URL)
	}

	if s.Mode != "" && !s.Mode.Valid() {
		return fmt.Errorf("unknown mode %q", s.Mode)
	}
	if !paginationValues[s.Hints.Pagination] {
		return fmt.Errorf("unknown pagination strategy %q", s.Hints.Pagination)
	}
	if s.MaxPages < 0 {
		return fmt.Errorf("max_pages must not be negative, got %d", s.MaxPages)
	}
	if s.Hints.PageSize < 0 {
		return fmt.Errorf("page_size must not be negative, got %d", s.Hints.PageSize)
	}
	return nil
}
