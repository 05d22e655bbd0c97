package types

import "time"

// Mode identifies the source kind of an extraction unit
type Mode string

const (
	ModeHTML Mode = "html"
	ModeAPI  Mode = "api"
	// ModeAuto defers the html/api decision to the fetched content type
	ModeAuto Mode = "auto"
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	switch m {
	case ModeHTML, ModeAPI, ModeAuto:
		return true
	default:
		return false
	}
}

// Code classifies in-band extraction problems
type Code string

const (
	CodeNoTableFound         Code = "no_table_found"
	CodeNoRowsExtracted      Code = "no_rows_extracted"
	CodeMalformedAPIResponse Code = "malformed_api_response"
	CodeUpstreamHTTPError    Code = "upstream_http_error"
	CodePaginationFailure    Code = "pagination_strategy_failure"
	CodeTransformFailure     Code = "transform_failure"
)

// Annotation reports a unit-level problem without aborting the run.
// Annotations ride on the batch; they are data, not control flow.
type Annotation struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Annotate builds an annotation
func Annotate(code Code, message string) Annotation {
	return Annotation{Code: code, Message: message}
}

// Hints carries operator-supplied overrides for one source. The tags
// cover every job file format.
type Hints struct {
	// TableSelector picks the target table directly, bypassing discovery.
	// CSS by default; XPath when the expression starts with "/" or "//".
	TableSelector string `json:"table_selector,omitempty" yaml:"table_selector,omitempty" toml:"table_selector,omitempty"`

	// Flavor names a provider-specific API response shape (e.g. "asha")
	Flavor string `json:"flavor,omitempty" yaml:"flavor,omitempty" toml:"flavor,omitempty"`

	// Pagination forces a single continuation strategy:
	// "auto" (default), "none", "next_link", "total_pages", "offset",
	// "page_param".
	Pagination string `json:"pagination,omitempty" yaml:"pagination,omitempty" toml:"pagination,omitempty"`

	// NextField overrides the response field holding a next URL or cursor
	NextField string `json:"next_field,omitempty" yaml:"next_field,omitempty" toml:"next_field,omitempty"`

	// PageParam is the query parameter carrying the page ordinal
	PageParam string `json:"page_param,omitempty" yaml:"page_param,omitempty" toml:"page_param,omitempty"`

	// OffsetParam is the query parameter carrying the record offset
	OffsetParam string `json:"offset_param,omitempty" yaml:"offset_param,omitempty" toml:"offset_param,omitempty"`

	// PageSize is the records-per-page expectation for the offset idiom
	PageSize int `json:"page_size,omitempty" yaml:"page_size,omitempty" toml:"page_size,omitempty"`
}

// ColumnProfile summarizes one column of a batch. Numeric columns carry
// summary statistics computed over the parseable values.
type ColumnProfile struct {
	Name    string  `json:"name"`
	Numeric bool    `json:"numeric"`
	Count   int     `json:"count"`
	Mean    float64 `json:"mean,omitempty"`
	Min     float64 `json:"min,omitempty"`
	Max     float64 `json:"max,omitempty"`
	StdDev  float64 `json:"std_dev,omitempty"`
}

// Batch is the sink payload for one extraction unit. Records hold either
// extracted rows (map of column name to string) or pass-through API
// records; the two are never mixed within one batch.
type Batch struct {
	ID          string          `json:"id"`
	URL         string          `json:"url"`
	Timestamp   time.Time       `json:"timestamp"`
	SourceType  Mode            `json:"source_type"`
	Records     []interface{}   `json:"records"`
	RowCount    int             `json:"row_count"`
	Columns     []ColumnProfile `json:"column_info,omitempty"`
	Annotations []Annotation    `json:"annotations,omitempty"`
}

// Annotate appends a problem annotation to the batch
func (b *Batch) Annotate(code Code, message string) {
	b.Annotations = append(b.Annotations, Annotation{Code: code, Message: message})
}

// Annotated reports whether the batch carries the given code
func (b *Batch) Annotated(code Code) bool {
	for _, a := range b.Annotations {
		if a.Code == code {
			return true
		}
	}
	return false
}
