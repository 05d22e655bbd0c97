package extract

import (
	"fmt"
	"time"

	"github.com/polychlorinated/structured-data-web-scraper/internal/dom"
	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/id"
	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/types"
)

// FromDocument runs the full HTML pipeline against one loaded page and
// assembles the batch for the sink. A missing table or an empty row
// set produces an annotated zero-record batch, never an error.
func FromDocument(doc *dom.Document, url string, hints types.Hints) *types.Batch {
	batch := &types.Batch{
		ID:         id.NewBatchID().String(),
		URL:        url,
		Timestamp:  time.Now().UTC(),
		SourceType: types.ModeHTML,
		Records:    []interface{}{},
	}

	found := FindTable(doc, hints.TableSelector)
	if !found.Found {
		batch.Annotate(types.CodeNoTableFound, found.Reason)
		return batch
	}

	headers := ResolveHeaders(found.Table)
	records := ExtractRows(found.Table, headers)
	if len(records) == 0 {
		batch.Annotate(types.CodeNoRowsExtracted, fmt.Sprintf("table %s yielded no data rows", found.Selector))
		return batch
	}

	for _, record := range records {
		batch.Records = append(batch.Records, record)
	}
	batch.RowCount = len(records)
	batch.Columns = ProfileColumns(headers, records)
	return batch
}
