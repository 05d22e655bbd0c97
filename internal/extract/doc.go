/*
Package extract turns an HTML table into structured records.

# Overview

The HTML pipeline runs in three stages over one loaded document:

 1. Discovery picks the target table, either from an explicit selector
    or by ranking every table on the page by structural signal.
 2. Header resolution determines the ordered column names, falling back
    through header section, first-row header cells, first-row data
    cells, and synthesized placeholders.
 3. Row extraction walks the data rows, skips structural header rows
    and separators, and maps each cell to its column name with a
    numeric-column cleanup heuristic.

Every stage is a pure function of its inputs. Nothing is cached across
calls, so independent documents can be processed concurrently.

# Output

Records are string-valued maps. Numeric columns hold a digits/decimal/
sign-only string rather than a parsed number; parsing happens only in
the column profiles attached to the batch.
*/
package extract
