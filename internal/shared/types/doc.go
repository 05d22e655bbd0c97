// Package types provides shared data structures for the extraction pipeline.
//
// This package defines the types that cross package boundaries, ensuring
// consistent shapes between the engine, the crawler, the sink, and the
// ops API.
//
// Core Types:
//   - Batch: result of one extraction unit, handed to the sink
//   - Annotation: in-band problem report (the engine never panics)
//   - Hints: operator-supplied extraction and pagination overrides
//   - ColumnProfile: per-column numeric summary attached to a batch
//
// Enums:
//   - Mode: source mode (html, api, auto)
//   - Code: annotation code taxonomy
package types
