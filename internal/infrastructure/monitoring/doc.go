/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the
scraper worker, tracking upstream fetches, extraction outcomes,
continuation decisions, crawl pool health, and the ops HTTP API.

# Features

- HTTP request metrics for the ops API (latency, throughput, size)
- Upstream fetch metrics (duration, status class, per-host breaker state)
- Extraction metrics (pages, batches, records, annotations by code)
- Pagination metrics (continuations found vs exhausted)
- Crawl pool metrics (active workers, queue depth, runs)
- WebSocket connection metrics
- Uptime

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record pipeline events
	metrics.RecordPage("html", duration)
	metrics.RecordAnnotation("no_table_found")

	// Time stages
	timer := monitoring.NewTimer(metrics, "html", "extract")
	// ... perform stage ...
	timer.Stop("success")

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
