package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/types"
)

func TestFromDocument(t *testing.T) {
	doc := pageFrom(t, `<table class="wikitable sortable">
		<tr><th>Rank</th><th>City</th><th>Type</th></tr>
		<tr><td>1</td><td>Austin</td><td>City</td></tr>
		<tr><td>2</td><td>Dallas</td><td>City</td></tr>
	</table>`)

	batch := FromDocument(doc, "https://example.org/cities", types.Hints{})

	require.NotNil(t, batch)
	assert.NotEmpty(t, batch.ID)
	assert.Equal(t, "https://example.org/cities", batch.URL)
	assert.Equal(t, types.ModeHTML, batch.SourceType)
	assert.Equal(t, 2, batch.RowCount)
	assert.Empty(t, batch.Annotations)

	require.Len(t, batch.Records, 2)
	assert.Equal(t, map[string]interface{}{"Rank": "1", "City": "Austin", "Type": "City"}, batch.Records[0])

	require.Len(t, batch.Columns, 3)
	assert.Equal(t, "Rank", batch.Columns[0].Name)
	assert.True(t, batch.Columns[0].Numeric)
}

func TestFromDocumentNoTable(t *testing.T) {
	doc := pageFrom(t, `<p>no tables anywhere</p>`)

	batch := FromDocument(doc, "https://example.org/empty", types.Hints{})

	assert.Equal(t, 0, batch.RowCount)
	assert.Empty(t, batch.Records)
	assert.True(t, batch.Annotated(types.CodeNoTableFound))
}

func TestFromDocumentNoRows(t *testing.T) {
	doc := pageFrom(t, `<table class="wikitable">
		<tr><th>Rank</th><th>City</th></tr>
	</table>`)

	batch := FromDocument(doc, "https://example.org/headers-only", types.Hints{})

	assert.Equal(t, 0, batch.RowCount)
	assert.Empty(t, batch.Records)
	assert.True(t, batch.Annotated(types.CodeNoRowsExtracted))
}

func TestFromDocumentExplicitSelector(t *testing.T) {
	doc := pageFrom(t, `
		<table class="wikitable"><tr><th>Wrong</th></tr><tr><td>w</td></tr></table>
		<table id="picked"><tr><th>Name</th></tr><tr><td>right</td></tr></table>
	`)

	batch := FromDocument(doc, "https://example.org/pick", types.Hints{TableSelector: "#picked"})

	require.Equal(t, 1, batch.RowCount)
	assert.Equal(t, map[string]interface{}{"Name": "right"}, batch.Records[0])
}
