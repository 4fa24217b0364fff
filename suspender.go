// Package suspender wires the activity tracker, the eviction scheduler and
// the settings cache into one component behind the command interface.
package suspender

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/config"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/events"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/host"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/scheduler"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/shared/rate"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/store"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/telemetry"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/tracker"
)

// Stats is the get-stats snapshot.
type Stats struct {
	Total     int
	Active    int
	Discarded int
	Enabled   bool
}

type Suspender struct {
	cancel    context.CancelFunc
	logger    *slog.Logger
	clock     clock.Clock
	host      host.Host
	store     store.Store
	tracker   *tracker.Tracker
	events    *events.Dispatcher
	scheduler *scheduler.Worker
	telemetry *telemetry.Logs

	// settings is the process-wide cache of the store record. Every handler
	// reads it from here; it changes only through SaveSettings and store
	// change notifications.
	mu       sync.RWMutex
	settings config.Settings
}

type Option func(*Suspender)

// WithClock replaces the wall clock, used by tests to drive the scan timer.
func WithClock(clk clock.Clock) Option {
	return func(s *Suspender) { s.clock = clk }
}

// New builds and starts the suspender. The store does not have to hold a
// record yet: app settings are used until the first save. The caller keeps
// ownership of the store and closes it after Close.
func New(ctx context.Context, app *config.App, logger *slog.Logger, h host.Host, st store.Store, opts ...Option) (*Suspender, error) {
	if st == nil {
		st = store.NewNoOp()
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Suspender{
		cancel:  cancel,
		logger:  logger,
		clock:   clock.New(),
		host:    h,
		store:   st,
		tracker: tracker.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.settings = loadSettings(ctx, logger, st, app.Settings)

	// every pre-existing tab starts out freshly active: a cold start never
	// suspends anything immediately
	tabs, err := h.QueryAll(ctx)
	if err != nil {
		logger.Warn("initial tab query failed, tracker starts empty", "err", err)
	} else {
		s.tracker.Seed(tabs, s.clock.Now())
	}

	var pacer *rate.Pacer
	if app.Eviction.Enabled() {
		pacer = rate.NewPacer(app.Eviction.CallsPerSec)
	}

	s.events = events.New(ctx, s.clock, logger, s.tracker)
	s.scheduler = scheduler.New(ctx, s.clock, logger, s.tracker, h, s, pacer)
	s.telemetry = telemetry.New(ctx, s.clock, app.Telemetry, logger, s.scheduler, s.tracker)

	st.OnChange(s.apply)

	return s, nil
}

// loadSettings reads the stored record; an unreadable or absent record falls
// back to the given settings without surfacing an error.
func loadSettings(ctx context.Context, logger *slog.Logger, st store.Store, fallback config.Settings) config.Settings {
	fallback.Adjust()
	stored, ok, err := st.Get(ctx)
	if err != nil {
		logger.Warn("settings store unreadable, using defaults", "err", err)
		return fallback
	}
	if !ok {
		return fallback
	}
	return stored
}

// Settings returns the cached settings snapshot.
func (s *Suspender) Settings() config.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Current implements scheduler.Source.
func (s *Suspender) Current() config.Settings {
	return s.Settings()
}

// SaveSettings merges a partial update, persists it and applies it to the
// running scheduler. The scan timer is replaced only when the interval
// actually changed.
func (s *Suspender) SaveSettings(ctx context.Context, p config.Patch) (config.Settings, error) {
	merged := s.Settings().Merge(p)
	merged.Adjust()

	if err := s.store.Set(ctx, merged); err != nil {
		return config.Settings{}, fmt.Errorf("persist settings: %w", err)
	}

	// the store change notification also lands in apply; the second call is a
	// no-op because the interval no longer differs
	s.apply(merged)
	return merged, nil
}

func (s *Suspender) apply(next config.Settings) {
	s.mu.Lock()
	prev := s.settings
	s.settings = next
	s.mu.Unlock()

	if prev.CheckInterval != next.CheckInterval {
		s.scheduler.Restart(next.CheckInterval)
	}
}

// Stats queries the host and returns the tab population snapshot.
func (s *Suspender) Stats(ctx context.Context) (Stats, error) {
	tabs, err := s.host.QueryAll(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("query tabs: %w", err)
	}

	st := Stats{Total: len(tabs), Enabled: s.Settings().Enabled}
	for _, tab := range tabs {
		if tab.Active {
			st.Active++
		}
		if tab.Discarded {
			st.Discarded++
		}
	}
	return st, nil
}

// ForceEvictNow suspends every unexcluded tab immediately and returns the
// count of successful suspensions.
func (s *Suspender) ForceEvictNow(ctx context.Context) int {
	return s.scheduler.ForceEvictNow(ctx)
}

// ScanNow runs one scheduled-style scan pass immediately.
func (s *Suspender) ScanNow(ctx context.Context) int {
	return s.scheduler.ScanAndEvict(ctx)
}

// Publish forwards a lifecycle event to the serialized dispatcher.
func (s *Suspender) Publish(ev events.Event) {
	s.events.Publish(ev)
}

// Close stops the background workers. It does not close the store.
func (s *Suspender) Close() error {
	_ = s.telemetry.Close()
	_ = s.scheduler.Close()
	_ = s.events.Close()
	s.cancel()
	return nil
}
