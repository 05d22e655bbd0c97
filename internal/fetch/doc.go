/*
Package fetch retrieves pages and API responses for the extraction
pipeline.

# Overview

One client serves every chain in a run. Each target host gets its own
token-bucket rate limiter and its own circuit breaker, so one slow or
failing host cannot starve the rest of the crawl. Transient transport
errors retry with backoff; a status >= 400 does not retry and is
reported to the caller as a completed exchange for annotation.

# Failure accounting

The breaker counts transport errors and 5xx responses as failures. A
4xx is a valid answer from a healthy host and leaves the breaker
alone.
*/
package fetch
