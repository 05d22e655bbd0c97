// Package main is the entry point for the structured data scraper daemon.
//
// The daemon crawls paginated HTML tables and JSON APIs, normalizes what it
// finds into tabular records, and writes each run to a JSONL dataset with a
// manifest. Jobs arrive three ways: a job file passed with -job (one-shot),
// job files under a directory passed with -jobs (submitted at startup), or
// the POST /jobs endpoint while serving.
//
// The server provides:
//   - REST API for one-shot extraction and run management
//   - WebSocket streaming of run progress
//   - Prometheus metrics and per-IP rate limiting
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Serve the ops API
//	./scraperd -port 8600
//
//	# Run one job to completion and print the run summary
//	./scraperd -job jobs/texas-cities.yaml
//
//	# Development mode (colored logs, debug level)
//	./scraperd -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
