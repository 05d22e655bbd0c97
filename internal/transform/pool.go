package transform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/types"
)

var (
	ErrPoolClosed = errors.New("transform pool is closed")
	ErrTimeout    = errors.New("transform runtime acquisition timeout")
)

// Pool shares loaded runtimes across workers. Every runtime carries the
// same job script; hook state persists across records within a run.
type Pool struct {
	config   Config
	script   string
	runtimes chan *Runtime
	size     int
	mu       sync.RWMutex
	closed   bool
}

// NewPool creates a runtime pool with the job script pre-loaded
func NewPool(config Config, script string, size int) (*Pool, error) {
	if size <= 0 {
		size = 4
	}

	pool := &Pool{
		config:   config,
		script:   script,
		runtimes: make(chan *Runtime, size),
		size:     size,
	}

	// Pre-create runtimes
	for i := 0; i < size; i++ {
		rt, err := New(config, script)
		if err != nil {
			pool.Close()
			return nil, err
		}
		pool.runtimes <- rt
	}

	return pool, nil
}

// Acquire gets a runtime from pool with timeout
func (p *Pool) Acquire(ctx context.Context) (*Runtime, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	select {
	case rt := <-p.runtimes:
		return rt, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Second):
		return nil, ErrTimeout
	}
}

// Release returns a runtime to the pool
func (p *Pool) Release(rt *Runtime) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return rt.Close()
	}

	select {
	case p.runtimes <- rt:
		return nil
	default:
		// Pool full, close runtime
		return rt.Close()
	}
}

// Apply runs the hook on one record using a pooled runtime
func (p *Pool) Apply(ctx context.Context, record map[string]interface{}) (map[string]interface{}, error) {
	rt, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(rt)

	return rt.Apply(ctx, record)
}

// ApplyBatch runs the hook over every record in place. Failed records
// pass through unchanged and annotate the batch once; records the hook
// returned null for are removed.
func (p *Pool) ApplyBatch(ctx context.Context, batch *types.Batch) {
	if batch == nil || len(batch.Records) == 0 {
		return
	}

	total := len(batch.Records)
	kept := batch.Records[:0]

	var failures int
	var firstErr error

	for _, rec := range batch.Records {
		m, ok := rec.(map[string]interface{})
		if !ok {
			// Non-object records are outside the hook contract
			kept = append(kept, rec)
			continue
		}

		out, err := p.Apply(ctx, m)
		if err != nil {
			failures++
			if firstErr == nil {
				firstErr = err
			}
			kept = append(kept, rec)
			continue
		}
		if out == nil {
			continue
		}
		kept = append(kept, out)
	}

	batch.Records = kept
	batch.RowCount = len(kept)

	if failures > 0 {
		batch.Annotate(types.CodeTransformFailure,
			fmt.Sprintf("transform failed for %d of %d records: %v", failures, total, firstErr))
	}
}

// Close closes pool and all runtimes
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	close(p.runtimes)

	// Close all runtimes
	for rt := range p.runtimes {
		rt.Close()
	}

	return nil
}

// Stats returns pool statistics
func (p *Pool) Stats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]interface{}{
		"size":      p.size,
		"available": len(p.runtimes),
		"in_use":    p.size - len(p.runtimes),
		"closed":    p.closed,
	}
}
