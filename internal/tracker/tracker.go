// Package tracker maintains the in-memory last-activity map. It is rebuilt
// from a host snapshot on every start: activity history deliberately does not
// survive a restart, so a cold start never suspends anything immediately.
package tracker

import (
	"sync"
	"time"

	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/model"
)

type Tracker struct {
	mu       sync.Mutex
	lastSeen map[model.TabID]time.Time
	counters *trackerCounters
}

func New() *Tracker {
	return &Tracker{
		lastSeen: make(map[model.TabID]time.Time),
		counters: newTrackerCounters(),
	}
}

// Touch upserts the last-activity stamp for a tab.
func (t *Tracker) Touch(id model.TabID, at time.Time) {
	t.mu.Lock()
	t.lastSeen[id] = at
	t.mu.Unlock()
	t.counters.touches.Add(1)
}

// Forget drops the record for a tab. Idempotent.
func (t *Tracker) Forget(id model.TabID) {
	t.mu.Lock()
	delete(t.lastSeen, id)
	t.mu.Unlock()
	t.counters.forgets.Add(1)
}

// LastActive returns the last-activity stamp, or false when the tab was never
// observed.
func (t *Tracker) LastActive(id model.TabID) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	at, ok := t.lastSeen[id]
	return at, ok
}

// Seed stamps every given tab with now, overwriting whatever was there before.
// Pre-existing tabs are treated as freshly active on (re)initialization.
func (t *Tracker) Seed(tabs []model.Tab, now time.Time) {
	t.mu.Lock()
	for _, tab := range tabs {
		t.lastSeen[tab.ID] = now
	}
	t.mu.Unlock()
	t.counters.seeds.Add(1)
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.lastSeen)
}

func (t *Tracker) Metrics() (touches, forgets, seeds int64) {
	return t.counters.snapshot()
}
