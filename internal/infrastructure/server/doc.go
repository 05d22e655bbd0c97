/*
Package server assembles the ops HTTP server and the extraction pipeline.

# Overview

New wires the full dependency graph: tracer, WebSocket hub, fetch client,
crawl runner, and the gin router with its middleware chain and routes.
Metrics are injected rather than constructed here because the collectors
register on the process-wide Prometheus registry; callers that build more
than one Server (tests) pass nil and lose only the /metrics route.

# Routes

	GET  /          service banner
	GET  /health    runner, breaker, and stream status
	GET  /metrics   Prometheus exposition (when metrics are enabled)
	POST /extract   one-shot extraction from inline content
	POST /jobs      submit a job for background crawling
	GET  /jobs      list runs
	GET  /jobs/:id  run status
	GET  /stream    WebSocket progress events

# Usage Example

	cfg := config.LoadOrDefault()
	logger := logging.NewDefault()
	srv := server.New(cfg, logger, monitoring.NewMetrics())
	go srv.Run()
	...
	srv.Close()
*/
package server
