package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	citationPattern      = regexp.MustCompile(`\[\d+\]`)
	nonNumericPattern    = regexp.MustCompile(`[^0-9.\-]+`)
	numericHeaderPattern = regexp.MustCompile(`(?i)rank|number|count|total|sum|avg|population|percent|rate|ratio|index|score|rating`)
	numericShapePattern  = regexp.MustCompile(`^[0-9.,\-+%]+$`)
)

// Clean strips bracketed citation markers like [3], collapses runs of
// whitespace to single spaces and trims the ends.
func Clean(s string) string {
	s = citationPattern.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// CleanNumeric strips every character that is not a digit, "." or "-"
func CleanNumeric(s string) string {
	return strings.TrimSpace(nonNumericPattern.ReplaceAllString(s, ""))
}

// CellText returns the cleaned text of a cell. Cells that wrap their
// value in a hyperlink yield the link text instead of the surrounding
// text; icon-only links with no text are passed over.
func CellText(cell *goquery.Selection) string {
	if cell == nil || cell.Length() == 0 {
		return ""
	}

	linkText := ""
	cell.Find("a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if t := Clean(link.Text()); t != "" {
			linkText = t
			return false
		}
		return true
	})
	if linkText != "" {
		return linkText
	}

	return Clean(cell.Text())
}

// NumericColumn reports whether a header names a quantity-like column
func NumericColumn(header string) bool {
	return numericHeaderPattern.MatchString(header)
}

// NumericShaped reports whether text looks like a numeric value once
// internal whitespace is removed
func NumericShaped(s string) bool {
	s = strings.Join(strings.Fields(s), "")
	return s != "" && numericShapePattern.MatchString(s)
}
