package sink

import (
	"sync"

	"github.com/polychlorinated/structured-data-web-scraper/internal/shared/types"
)

// Sink receives the batches a run produces
type Sink interface {
	Append(batch *types.Batch) error
	Close() error
}

// Memory buffers batches for tests and for streaming consumers
type Memory struct {
	mu      sync.Mutex
	batches []*types.Batch
}

// NewMemory creates an in-memory sink
func NewMemory() *Memory {
	return &Memory{}
}

// Append stores the batch
func (m *Memory) Append(batch *types.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, batch)
	return nil
}

// Close is a no-op
func (m *Memory) Close() error {
	return nil
}

// Batches returns the appended batches in order
func (m *Memory) Batches() []*types.Batch {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.Batch, len(m.batches))
	copy(out, m.batches)
	return out
}
