package resilience

import "sync"

// Registry keeps one breaker per upstream host, created lazily with
// shared settings. Hosts are independent: a tripped origin never blocks
// fetches to other origins.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*Breaker
	settings Settings
}

// NewRegistry creates a per-host breaker registry
func NewRegistry(settings Settings) *Registry {
	return &Registry{
		breakers: make(map[string]*Breaker),
		settings: settings,
	}
}

// For returns the breaker for a host, creating it on first use
func (r *Registry) For(host string) *Breaker {
	r.mu.RLock()
	b, ok := r.breakers[host]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[host]; ok {
		return b
	}
	b = New(host, r.settings)
	r.breakers[host] = b
	return b
}

// Snapshot returns the status of every known host breaker
func (r *Registry) Snapshot() []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make([]Status, 0, len(r.breakers))
	for _, b := range r.breakers {
		statuses = append(statuses, b.Snapshot())
	}
	return statuses
}
