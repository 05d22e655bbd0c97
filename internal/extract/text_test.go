package extract

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polychlorinated/structured-data-web-scraper/internal/dom"
)

func cellFrom(t *testing.T, cellHTML string) *goquery.Selection {
	t.Helper()
	doc, err := dom.NewLoader().Load("<html><body><table><tr>" + cellHTML + "</tr></table></body></html>")
	require.NoError(t, err)
	cell := doc.Find("td, th").First()
	require.Equal(t, 1, cell.Length())
	return cell
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"citation markers", "Austin[1][23]", "Austin"},
		{"whitespace runs", "  New   York \n City ", "New York City"},
		{"marker then trailing space", " Dallas [4] ", "Dallas"},
		{"non-numeric brackets kept", "He[llo]", "He[llo]"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestCleanNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1,234", "1234"},
		{"5.6%", "5.6"},
		{"$12.50", "12.50"},
		{"-3", "-3"},
		{"12 345", "12345"},
		{"abc", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanNumeric(tt.in), tt.in)
	}
}

func TestCellTextPlain(t *testing.T) {
	cell := cellFrom(t, `<td>Austin[2]</td>`)
	assert.Equal(t, "Austin", CellText(cell))
}

func TestCellTextPrefersLink(t *testing.T) {
	cell := cellFrom(t, `<td><a href="/wiki/Austin">Austin</a> (state capital)[1]</td>`)
	assert.Equal(t, "Austin", CellText(cell))
}

func TestCellTextSkipsIconLinks(t *testing.T) {
	cell := cellFrom(t, `<td><a href="#"><img src="flag.png"/></a><a href="/wiki/Dallas">Dallas</a></td>`)
	assert.Equal(t, "Dallas", CellText(cell))
}

func TestCellTextLinklessFallback(t *testing.T) {
	cell := cellFrom(t, `<td><a href="#"></a>plain value</td>`)
	assert.Equal(t, "plain value", CellText(cell))
}

func TestCellTextNil(t *testing.T) {
	assert.Equal(t, "", CellText(nil))
}

func TestNumericColumn(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"Population", true},
		{"2023 Rank", true},
		{"Growth rate", true},
		{"Total", true},
		{"Name", false},
		{"City", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NumericColumn(tt.header), tt.header)
	}
}

func TestNumericShaped(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1,234", true},
		{"5.6%", true},
		{"12 345", true},
		{"-7", true},
		{"abc", false},
		{"1,234 people", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NumericShaped(tt.in), tt.in)
	}
}
