/*
Package ws streams run progress to WebSocket subscribers.

# Overview

The hub accepts connections on the stream endpoint and pushes run
lifecycle events: run_started, one page event per processed extraction
unit, and run_complete. Clients may send ping frames and receive pong.

Each subscriber has a buffered send queue drained by a dedicated writer;
a slow consumer loses events instead of stalling the run.

# Usage Example

	hub := NewHub(logger, metrics)
	router.GET("/stream", hub.HandleConnection)

	hub.Broadcast(Event{Type: EventPage, RunID: runID, URL: url, Page: 2})
*/
package ws
