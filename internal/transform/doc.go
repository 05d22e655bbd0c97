/*
Package transform runs job-supplied JavaScript hooks over extracted
records.

# Overview

A job may carry a script defining transform(record). The script runs in
an isolated goja runtime with:

  - Execution timeout per record (interrupt based)
  - API restrictions (no Node.js globals, no timers)
  - Console capture (log/warn/error/info)

The hook receives one record object and returns the replacement object,
or null to drop the record. A thrown error leaves the record unchanged
and annotates the batch.

# Usage Example

	pool, err := NewPool(DefaultConfig(), job.Transform, workers)
	if err != nil {
		return err
	}
	defer pool.Close()

	pool.ApplyBatch(ctx, batch)

# Security Model

Hook code cannot access the filesystem or network, spawn processes, or
schedule timers. Runtime state is isolated per pool; hooks share no
state with the host beyond the record value.
*/
package transform
