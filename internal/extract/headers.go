package extract

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// HeaderSet is the resolved column naming for one table
type HeaderSet struct {
	Names []string

	// ConsumedFirstRow is set when the first body row supplied the
	// headers and must be skipped during row extraction
	ConsumedFirstRow bool
}

// ResolveHeaders determines the ordered column names of a table.
// Resolution order, first success wins:
//
//  1. the first header-section row's cells
//  2. header cells (th) of the first body row
//  3. plain cells of the first body row, consuming that row
//  4. synthesized Column_{i} placeholders
//
// The result is empty only for a table with no rows at all.
func ResolveHeaders(table *goquery.Selection) HeaderSet {
	headRow := table.ChildrenFiltered("thead").ChildrenFiltered("tr").First()
	if headRow.Length() > 0 {
		cells := headRow.ChildrenFiltered("th, td")
		if cells.Length() > 0 {
			return HeaderSet{Names: cellNames(cells)}
		}
	}

	rows := bodyRows(table)
	if rows.Length() == 0 {
		return HeaderSet{}
	}

	first := rows.First()
	if ths := first.ChildrenFiltered("th"); ths.Length() > 0 {
		return HeaderSet{Names: cellNames(ths)}
	}
	if tds := first.ChildrenFiltered("td"); tds.Length() > 0 {
		return HeaderSet{Names: cellNames(tds), ConsumedFirstRow: true}
	}

	count := first.ChildrenFiltered("th, td").Length()
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("Column_%d", i+1)
	}
	return HeaderSet{Names: names}
}

// cellNames cleans header cell texts, substituting placeholders for
// empty cells and suffixing duplicates so records stay collision-safe
func cellNames(cells *goquery.Selection) []string {
	names := make([]string, 0, cells.Length())
	cells.Each(func(i int, cell *goquery.Selection) {
		name := Clean(cell.Text())
		if name == "" {
			name = fmt.Sprintf("Column_%d", i+1)
		}
		names = append(names, name)
	})

	seen := make(map[string]int, len(names))
	for i, n := range names {
		seen[n]++
		if c := seen[n]; c > 1 {
			names[i] = fmt.Sprintf("%s_%d", n, c)
		}
	}
	return names
}

// bodyRows returns a table's data-section rows: the rows of its body
// section when present, else its direct row children. Nested tables
// are never traversed.
func bodyRows(table *goquery.Selection) *goquery.Selection {
	tbody := table.ChildrenFiltered("tbody")
	if tbody.Length() > 0 {
		if rows := tbody.ChildrenFiltered("tr"); rows.Length() > 0 {
			return rows
		}
	}
	return table.ChildrenFiltered("tr")
}
