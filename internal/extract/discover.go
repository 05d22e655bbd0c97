package extract

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/polychlorinated/structured-data-web-scraper/internal/dom"
)

// Fallback-tier tables must clear this row count to be trusted
const minFallbackRows = 5

// Structural signal weights for the scoring tier
const (
	weightWikitable  = 50
	weightSortable   = 30
	weightDataClass  = 20
	weightGridClass  = 20
	weightListClass  = 15
	maxRowScore      = 50
	weightHeaderCell = 2
)

// Discovery is the outcome of table discovery on one page
type Discovery struct {
	Found    bool
	Table    *goquery.Selection
	Selector string
	Score    int
	Reason   string
}

// FindTable picks the target table of a page. An explicit selector
// wins outright; otherwise ranked strategies apply:
//
//  1. a table classed both wikitable and sortable
//  2. any wikitable
//  3. the highest-scoring table by structural signal, ties broken by
//     document order, accepted only above a minimum row count
//
// A page with no acceptable table reports Found=false with a reason,
// never an error.
func FindTable(doc *dom.Document, explicitSelector string) Discovery {
	if explicitSelector != "" {
		sel, err := doc.Select(explicitSelector)
		if err != nil {
			return Discovery{Reason: fmt.Sprintf("explicit selector %q failed: %v", explicitSelector, err)}
		}
		if sel.Length() == 0 {
			return Discovery{Reason: fmt.Sprintf("explicit selector %q matched nothing", explicitSelector)}
		}
		return Discovery{Found: true, Table: sel.First(), Selector: explicitSelector}
	}

	tables := doc.Find("table")
	if tables.Length() == 0 {
		return Discovery{Reason: "no tables on page"}
	}

	if sel := doc.Find("table.wikitable.sortable"); sel.Length() > 0 {
		return Discovery{Found: true, Table: sel.First(), Selector: "table.wikitable.sortable", Score: ScoreTable(sel.First())}
	}
	if sel := doc.Find("table.wikitable"); sel.Length() > 0 {
		return Discovery{Found: true, Table: sel.First(), Selector: "table.wikitable", Score: ScoreTable(sel.First())}
	}

	best := Discovery{}
	bestRows := 0
	tables.Each(func(i int, table *goquery.Selection) {
		score := ScoreTable(table)
		if best.Table == nil || score > best.Score {
			best = Discovery{
				Table:    table,
				Selector: fmt.Sprintf("table:eq(%d)", i),
				Score:    score,
			}
			bestRows = table.Find("tr").Length()
		}
	})

	if bestRows <= minFallbackRows {
		return Discovery{
			Score:  best.Score,
			Reason: fmt.Sprintf("best candidate %s has only %d rows", best.Selector, bestRows),
		}
	}

	best.Found = true
	return best
}

// ScoreTable computes the structural signal score of one table
func ScoreTable(table *goquery.Selection) int {
	score := 0
	if table.HasClass("wikitable") {
		score += weightWikitable
	}
	if table.HasClass("sortable") {
		score += weightSortable
	}
	if table.HasClass("data") {
		score += weightDataClass
	}
	if table.HasClass("grid") {
		score += weightGridClass
	}
	if table.HasClass("list") {
		score += weightListClass
	}

	rows := table.Find("tr").Length()
	if rows > maxRowScore {
		rows = maxRowScore
	}
	score += rows
	score += weightHeaderCell * table.Find("th").Length()

	return score
}
