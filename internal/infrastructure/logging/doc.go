// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Log Levels:
//   - Debug: Verbose debugging information
//   - Info: General informational messages
//   - Warn: Warning messages
//   - Error: Error messages
//   - Fatal: Fatal errors (exits process)
//
// Features:
//   - Zero-allocation logging in production
//   - Structured fields for context
//   - Run/page scoped child loggers for crawl pipelines
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Worker starting", zap.Int("workers", 4))
//	page := logger.WithPage("https://example.com/list", 2)
//	page.Warn("No table found")
package logging
