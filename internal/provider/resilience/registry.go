package resilience

import (
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// UpstreamHealth is a point-in-time view of one upstream client.
type UpstreamHealth struct {
	Name          string
	State         gobreaker.State
	Counts        gobreaker.Counts
	LastSuccessAt *time.Time
	LastFailureAt *time.Time
	LastError     string
}

// Status collapses the breaker state to ok, degraded or down.
func (h *UpstreamHealth) Status() string {
	switch h.State {
	case gobreaker.StateOpen:
		return "down"
	case gobreaker.StateHalfOpen:
		return "degraded"
	default:
		return "ok"
	}
}

// Registry tracks upstream clients and the outcome of their last calls.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds or replaces the client stored under name.
func (r *Registry) Register(name string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = &entry{client: c}
}

// RecordSuccess stamps the last success time. Unknown names are ignored.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[name]; ok {
		now := time.Now()
		e.lastSuccessAt = &now
	}
}

// RecordFailure stamps the last failure time and error. Unknown names are ignored.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[name]; ok {
		now := time.Now()
		e.lastFailureAt = &now
		if err != nil {
			e.lastError = err.Error()
		}
	}
}

// Health returns the view of one upstream, or nil if it is not registered.
func (r *Registry) Health(name string) *UpstreamHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil
	}
	return e.snapshot(name)
}

// All returns every registered upstream ordered by name.
func (r *Registry) All() []*UpstreamHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*UpstreamHealth, 0, len(r.entries))
	for name, e := range r.entries {
		out = append(out, e.snapshot(name))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered upstreams.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (e *entry) snapshot(name string) *UpstreamHealth {
	return &UpstreamHealth{
		Name:          name,
		State:         e.client.State(),
		Counts:        e.client.Counts(),
		LastSuccessAt: e.lastSuccessAt,
		LastFailureAt: e.lastFailureAt,
		LastError:     e.lastError,
	}
}
