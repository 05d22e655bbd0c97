/*
Package sink persists extraction batches.

Batches append to one JSON Lines file per run, gzip-compressed by
default. Appends are idempotent from the sink's point of view: the
sink never deduplicates, loop prevention upstream is the only guard
against re-extraction. Closing a sink writes a manifest alongside the
dataset summarizing batch, record and annotation counts for the run.
*/
package sink
