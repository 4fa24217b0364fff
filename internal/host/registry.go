package host

import (
	"context"
	"errors"
	"sync"

	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/model"
)

var ErrUnknownTab = errors.New("unknown tab")

// Registry is an in-memory Host. The browser companion mirrors its tab set in
// here through the command interface and polls back the suspend actions the
// scheduler decided on. Enumeration preserves insertion order.
type Registry struct {
	mu       sync.Mutex
	order    []model.TabID
	tabs     map[model.TabID]*model.Tab
	pending  []model.TabID
	failures map[model.TabID]error
}

func NewRegistry() *Registry {
	return &Registry{
		tabs:     make(map[model.TabID]*model.Tab),
		failures: make(map[model.TabID]error),
	}
}

// Upsert adds a tab or replaces an existing one. A replaced tab keeps its
// position in enumeration order.
func (r *Registry) Upsert(tab model.Tab) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tabs[tab.ID]; !ok {
		r.order = append(r.order, tab.ID)
	}
	t := tab
	r.tabs[tab.ID] = &t
}

// Remove drops a tab. Idempotent.
func (r *Registry) Remove(id model.TabID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tabs[id]; !ok {
		return
	}
	delete(r.tabs, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// SetActive marks one tab focused and unfocuses the rest. Activating a
// suspended tab reloads it in the browser, so Discarded is cleared too.
func (r *Registry) SetActive(id model.TabID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	tab, ok := r.tabs[id]
	if !ok {
		return false
	}
	for _, t := range r.tabs {
		t.Active = false
	}
	tab.Active = true
	tab.Discarded = false
	return true
}

// Apply merges an update delta into a tab.
func (r *Registry) Apply(id model.TabID, ch model.TabChange) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	tab, ok := r.tabs[id]
	if !ok {
		return false
	}
	if ch.Audible != nil {
		tab.Audible = *ch.Audible
	}
	if ch.URL != nil {
		tab.URL = *ch.URL
	}
	return true
}

func (r *Registry) QueryAll(ctx context.Context) ([]model.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Tab, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.tabs[id])
	}
	return out, nil
}

// Discard marks a tab suspended and queues the action for the companion.
func (r *Registry) Discard(ctx context.Context, id model.TabID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failures[id]; ok {
		return err
	}
	tab, ok := r.tabs[id]
	if !ok {
		return ErrUnknownTab
	}
	tab.Discarded = true
	r.pending = append(r.pending, id)
	return nil
}

// DrainPending returns the suspend actions queued since the previous drain.
func (r *Registry) DrainPending() []model.TabID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.pending
	r.pending = nil
	return out
}

// FailDiscard makes Discard of the given tab return err. Used by tests to
// exercise the non-fatal per-tab failure path.
func (r *Registry) FailDiscard(id model.TabID, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failures, id)
		return
	}
	r.failures[id] = err
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tabs)
}
