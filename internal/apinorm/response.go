package apinorm

import (
	"time"

	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/id"
	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/types"
)

// FromResponse normalizes one API response body and assembles the
// batch for the sink. A body that is not JSON or holds no locatable
// records produces an annotated zero-record batch, never an error.
func FromResponse(body []byte, url string, hints types.Hints) *types.Batch {
	batch := &types.Batch{
		ID:         id.NewBatchID().String(),
		URL:        url,
		Timestamp:  time.Now().UTC(),
		SourceType: types.ModeAPI,
		Records:    []interface{}{},
	}

	records, ok := Normalize(body, hints.Flavor)
	if !ok {
		batch.Annotate(types.CodeMalformedAPIResponse, "response body is not JSON or is a bare scalar")
		return batch
	}

	batch.Records = records
	batch.RowCount = len(records)
	if len(records) == 0 {
		batch.Annotate(types.CodeNoRowsExtracted, "normalized response contains no records")
	}
	return batch
}
