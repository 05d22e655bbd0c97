/*
Package apinorm locates the record array inside arbitrary JSON
responses.

API providers disagree on response envelopes: some return a bare
array, some nest records under "results", "data" or "items", some
under a provider-specific field. Normalize resolves these shapes in a
fixed priority order and passes the located records through without
reshaping them. Individual records are never remapped or subset; field
introspection is only used to find the array.

Object field order matters for the last-resort scan (first array-valued
field wins), so objects are walked with an ordered token decoder rather
than an unordered map.
*/
package apinorm
