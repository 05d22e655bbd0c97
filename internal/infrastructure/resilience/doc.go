/*
Package resilience provides circuit breakers for upstream fetch hosts.

# Overview

This package implements the circuit breaker pattern to stop hammering
origins that are failing or black-holing requests. The crawler keeps one
breaker per upstream host via Registry; a tripped host fails fast while
other hosts keep flowing.

# Features

- Three-state circuit breaker (Closed, Open, Half-Open)
- Configurable failure thresholds and timeouts
- Automatic state transitions
- Lazy per-host registry with shared settings
- State change callbacks for monitoring
- Thread-safe operations

# Usage

	reg := resilience.NewRegistry(resilience.Settings{
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 4
		},
		OnStateChange: func(host string, from, to resilience.State) {
			metrics.SetBreakerState(host, to.Value())
		},
	})

	breaker := reg.For("en.wikipedia.org")
	result, err := breaker.Execute(func() (interface{}, error) {
		return client.Get(url)
	})

# States

- Closed: normal operation, requests pass through
- Open: host unavailable, requests fail immediately
- Half-Open: probing recovery, limited requests allowed

The breaker transitions on success/failure outcomes:

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
