package viewers

import (
	"sort"
	"sync"

	"github.com/vovakirdan/redengine/internal/engine"
)

// Registry tracks connected viewers. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	viewers map[ID]Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		viewers: make(map[ID]Handle),
	}
}

// Register adds a viewer and announces it to the others. A viewer with the
// same ID replaces the previous one.
func (r *Registry) Register(v Handle) {
	r.mu.Lock()
	r.viewers[v.ID()] = v
	count := len(r.viewers)
	others := r.othersLocked(v.ID())
	r.mu.Unlock()

	for _, o := range others {
		o.Send(JoinedEvent{Viewer: v.ID(), Count: count})
	}
}

// Unregister removes a viewer and announces the departure to the rest.
// Unknown IDs are ignored.
func (r *Registry) Unregister(id ID) {
	r.mu.Lock()
	if _, ok := r.viewers[id]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.viewers, id)
	count := len(r.viewers)
	others := r.othersLocked(id)
	r.mu.Unlock()

	for _, o := range others {
		o.Send(LeftEvent{Viewer: id, Count: count})
	}
}

func (r *Registry) othersLocked(id ID) []Handle {
	out := make([]Handle, 0, len(r.viewers))
	for vid, v := range r.viewers {
		if vid != id {
			out = append(out, v)
		}
	}
	return out
}

// Get retrieves a viewer by ID.
func (r *Registry) Get(id ID) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.viewers[id]
	return v, ok
}

// Count returns the number of connected viewers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.viewers)
}

// IDs returns the connected viewer IDs in sorted order.
func (r *Registry) IDs() []ID {
	r.mu.RLock()
	ids := make([]ID, 0, len(r.viewers))
	for id := range r.viewers {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Broadcast sends evt to every connected viewer.
func (r *Registry) Broadcast(evt Event) {
	r.mu.RLock()
	all := r.othersLocked("")
	r.mu.RUnlock()

	for _, v := range all {
		v.Send(evt)
	}
}

// Attach broadcasts every finished session of app until the returned func
// is called.
func (r *Registry) Attach(app *engine.App) func() {
	return app.Controller.OnFinish(func(o engine.Outcome) {
		r.Broadcast(OutcomeEvent{Outcome: o})
	})
}
