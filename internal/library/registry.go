package library

import (
	"fmt"
	"sort"
	"sync"

	"github.com/duobook/studio/internal/entities"
)

// Entry is a registered source: the adapter plus metadata computed once at
// registration time.
type Entry struct {
	Adapter      Adapter
	Capabilities Capabilities
}

// Registry maps stable source ids to their adapters. It is constructed
// explicitly at startup and registration is append-only for the process
// lifetime; sources are compiled in, not dynamically loaded, so there is no
// unregister.
//
// Everything except the availability view is immutable after construction
// and safe to share. Availability is updated by the background sweep and
// guarded separately.
type Registry struct {
	entries map[string]*Entry
	order   []string

	mu          sync.RWMutex
	unavailable map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{
		entries:     make(map[string]*Entry),
		unavailable: make(map[string]bool),
	}
}

// Register adds an adapter. It rejects duplicate ids and adapters whose
// embedded license violates the tier invariants, so a misclassified source
// can never enter the catalog.
func (r *Registry) Register(a Adapter) error {
	id := a.SourceID()
	if id == "" {
		return fmt.Errorf("adapter %q has an empty source id", a.DisplayName())
	}
	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("source %q is already registered", id)
	}
	if err := a.License().Validate(); err != nil {
		return fmt.Errorf("source %q: %w", id, err)
	}

	r.entries[id] = &Entry{
		Adapter:      a,
		Capabilities: CapabilitiesOf(a),
	}
	r.order = append(r.order, id)
	return nil
}

// MustRegister panics on registration failure. Used for the compiled-in
// catalog where a failure is a programming error.
func (r *Registry) MustRegister(a Adapter) {
	if err := r.Register(a); err != nil {
		panic(err)
	}
}

// Get returns the entry for a source id. Unknown ids return (nil, false),
// never a panic.
func (r *Registry) Get(sourceID string) (*Entry, bool) {
	e, ok := r.entries[sourceID]
	return e, ok
}

func (r *Registry) Has(sourceID string) bool {
	_, ok := r.entries[sourceID]
	return ok
}

// List returns all source ids in registration order.
func (r *Registry) List() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ListByTier returns the ids whose adapters classify themselves under the
// given tier. The view is derived from each adapter's own embedded
// LicenseInfo; there is no second classification table to drift from it.
func (r *Registry) ListByTier(tier entities.LicenseType) []string {
	var out []string
	for _, id := range r.order {
		if r.entries[id].Adapter.License().Type == tier {
			out = append(out, id)
		}
	}
	return out
}

// SetAvailable records the result of an availability check for a source.
func (r *Registry) SetAvailable(sourceID string, available bool) {
	if !r.Has(sourceID) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if available {
		delete(r.unavailable, sourceID)
	} else {
		r.unavailable[sourceID] = true
	}
}

// Available reports whether a source's upstream was reachable at the last
// sweep. Sources default to available until a check says otherwise.
func (r *Registry) Available(sourceID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.unavailable[sourceID]
}

// ListAvailable returns the ids of sources currently believed reachable,
// sorted for stable output.
func (r *Registry) ListAvailable() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for _, id := range r.order {
		if !r.unavailable[id] {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
