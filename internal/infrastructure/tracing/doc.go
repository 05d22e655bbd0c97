/*
Package tracing provides lightweight tracing for extraction pipelines.

# Overview

This package tracks a single extraction unit across its pipeline stages
(fetch, table discovery, row extraction, pagination resolution, sink
writes). It follows OpenTelemetry concepts but with a minimal
implementation tailored to the scraper's needs.

# Features

- Trace context propagation via HTTP headers
- Span creation and management with parent-child relationships
- Automatic trace ID generation
- HTTP middleware for automatic instrumentation
- Structured logging integration
- Low overhead with buffered span collection

# Usage

	// Create tracer
	tracer := tracing.New("scraperd", logger)

	// HTTP middleware
	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation around a pipeline stage
	span, ctx := tracer.StartSpan(ctx, "extract.rows")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

	span.SetTag("url", unit.URL)

# Trace Format

Traces use standard HTTP headers for propagation:
- X-Trace-ID: Unique identifier for an entire extraction unit
- X-Span-ID: Identifier for the current stage

# Performance

The tracing system is designed for minimal overhead:
- Buffered span collection (1000 spans)
- Async span processing
- Structured logging integration
*/
package tracing
