// Package config provides 12-factor configuration management for the
// scraper worker.
//
// Configuration is loaded from environment variables with sensible
// defaults. CLI flags can override environment variables for development
// flexibility.
//
// Configuration Sections:
//   - Server: ops HTTP server settings (port, host)
//   - Fetch: upstream HTTP client settings (timeout, UA, per-host limits)
//   - Crawl: worker pool and page budget settings
//   - Sink: dataset output settings (directory, compression)
//   - Logging: log level and output format
//   - RateLimit: ops API per-IP rate limiting
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Ops API on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - FETCH_TIMEOUT_SECONDS, FETCH_USER_AGENT, FETCH_HOST_RPS,
//     FETCH_HOST_BURST, FETCH_MAX_BODY_BYTES, FETCH_RETRY_MAX
//   - CRAWL_WORKERS, CRAWL_MAX_PAGES, CRAWL_QUEUE_CAPACITY
//   - SINK_DIR, SINK_COMPRESS
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
