package extract

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// ExtractRows walks a table's data rows and produces one record per
// row. Rows are skipped when the resolver already consumed them as
// headers, when they look structurally header-like in a table without
// a header section, or when they contain no data cells at all. A row
// with more cells than headers keeps the excess under synthesized
// column names rather than being dropped.
func ExtractRows(table *goquery.Selection, headers HeaderSet) []map[string]interface{} {
	rows := bodyRows(table)
	records := make([]map[string]interface{}, 0, rows.Length())

	skipFirst := headers.ConsumedFirstRow
	if !skipFirst && table.ChildrenFiltered("thead").Length() == 0 && structuralHeader(rows) {
		skipFirst = true
	}

	rows.Each(func(i int, row *goquery.Selection) {
		if i == 0 && skipFirst {
			return
		}
		if row.ChildrenFiltered("td").Length() == 0 {
			// Section separators carry no data cells
			return
		}

		cells := row.ChildrenFiltered("th, td")
		record := make(map[string]interface{}, cells.Length())
		cells.Each(func(j int, cell *goquery.Selection) {
			name := ""
			if j < len(headers.Names) {
				name = headers.Names[j]
			} else {
				name = fmt.Sprintf("Column_%d", j+1)
			}

			value := CellText(cell)
			if NumericColumn(name) && NumericShaped(value) {
				record[name] = CleanNumeric(value)
			} else {
				record[name] = value
			}
		})
		records = append(records, record)
	})

	return records
}

// structuralHeader reports whether the first row looks like a header
// even though no header section marks it: spanned cells, or a cell
// count that disagrees with the following row.
func structuralHeader(rows *goquery.Selection) bool {
	first := rows.First()
	cells := first.ChildrenFiltered("th, td")
	if cells.Length() == 0 {
		return false
	}

	spanned := false
	cells.EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if _, ok := cell.Attr("colspan"); ok {
			spanned = true
			return false
		}
		if _, ok := cell.Attr("rowspan"); ok {
			spanned = true
			return false
		}
		return true
	})
	if spanned {
		return true
	}

	if rows.Length() > 1 {
		next := rows.Eq(1).ChildrenFiltered("th, td")
		if next.Length() > 0 && next.Length() != cells.Length() {
			return true
		}
	}
	return false
}
