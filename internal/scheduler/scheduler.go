// Package scheduler runs the periodic idle scan and the manual suspend path.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/config"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/host"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/policy"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/shared/rate"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/tracker"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/model"
)

// untrackedPenalty is added past the timeout when a scan discovers a tab with
// no activity record: the synthesized stamp makes it eligible on this very
// scan instead of a full timeout later.
const untrackedPenalty = time.Second

// Source yields the current settings snapshot. Re-read at the top of every
// scan so a settings change applies to the next pass without a restart.
type Source interface {
	Current() config.Settings
}

type Worker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	clock    clock.Clock
	logger   *slog.Logger
	tracker  *tracker.Tracker
	host     host.Host
	settings Source
	pacer    *rate.Pacer
	counters *schedulerCounters

	// scanMu makes scan passes mutually exclusive. A timer tick arriving while
	// a pass is still running is skipped, not queued.
	scanMu sync.Mutex

	restartCh chan time.Duration
	done      chan struct{}
}

func New(
	ctx context.Context,
	clk clock.Clock,
	logger *slog.Logger,
	tr *tracker.Tracker,
	h host.Host,
	settings Source,
	pacer *rate.Pacer,
) *Worker {
	ctx, cancel := context.WithCancel(ctx)
	w := &Worker{
		ctx:       ctx,
		cancel:    cancel,
		clock:     clk,
		logger:    logger,
		tracker:   tr,
		host:      h,
		settings:  settings,
		pacer:     pacer,
		counters:  newSchedulerCounters(),
		restartCh: make(chan time.Duration),
		done:      make(chan struct{}),
	}
	go w.run()
	return w
}

// Restart replaces the scan timer with one firing at the given interval. The
// old timer is stopped first, so at most one timer exists at any moment.
func (w *Worker) Restart(interval time.Duration) {
	select {
	case <-w.ctx.Done():
	case w.restartCh <- interval:
	}
}

// Metrics returns cumulative counters: scan passes run, ticks skipped because
// a pass was still running, tabs suspended, and suspend call failures.
func (w *Worker) Metrics() (scans, skipped, evicted, failures int64) {
	return w.counters.snapshot()
}

func (w *Worker) Close() error {
	w.cancel()
	<-w.done
	return nil
}

func (w *Worker) run() {
	defer close(w.done)

	interval := w.settings.Current().CheckInterval
	if interval <= 0 {
		interval = config.DefaultCheckInterval
	}
	w.logger.Info("suspend scheduler is running", "check_interval", interval.String())
	defer w.logger.Info("suspend scheduler is stopped")

	ticker := w.clock.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case interval = <-w.restartCh:
			if interval <= 0 {
				interval = config.DefaultCheckInterval
			}
			ticker.Stop()
			ticker = w.clock.Ticker(interval)
			w.logger.Info("scan timer restarted", "check_interval", interval.String())
		case <-ticker.C:
			w.scanTick()
		}
	}
}

func (w *Worker) scanTick() {
	if !w.scanMu.TryLock() {
		w.counters.skipped.Add(1)
		w.logger.Warn("previous scan still running, tick skipped")
		return
	}
	defer w.scanMu.Unlock()
	w.scan(w.ctx)
}

// ScanAndEvict runs one scan pass immediately, serialized with the timer.
// Returns the number of tabs suspended.
func (w *Worker) ScanAndEvict(ctx context.Context) int {
	w.scanMu.Lock()
	defer w.scanMu.Unlock()
	return w.scan(ctx)
}

// scan is the periodic pass: it suspends every unexcluded tab idle past the
// timeout, stopping for good once the active floor is reached. Callers hold
// scanMu.
func (w *Worker) scan(ctx context.Context) int {
	s := w.settings.Current()
	if !s.Enabled {
		return 0
	}
	w.counters.scans.Add(1)

	now := w.clock.Now()
	tabs, err := w.host.QueryAll(ctx)
	if err != nil {
		w.logger.Error("tab query failed, scan aborted", "err", err)
		return 0
	}

	// the floor counts every non-suspended tab, the focused one included
	eligiblePool := 0
	for _, tab := range tabs {
		if !tab.Discarded {
			eligiblePool++
		}
	}

	evicted := 0
	for _, tab := range tabs {
		if policy.IsExcluded(tab, s) {
			continue
		}

		last, ok := w.tracker.LastActive(tab.ID)
		if !ok {
			// discovered untracked: stamp it just past the timeout and keep it
			last = now.Add(-(s.InactiveTimeout + untrackedPenalty))
			w.tracker.Touch(tab.ID, last)
		}
		if now.Sub(last) <= s.InactiveTimeout {
			continue
		}

		if eligiblePool-evicted <= s.MinActiveTabs {
			// floor reached: stop the whole pass, later tabs are spared
			w.logger.Info("active tab floor reached, scan stopped",
				"floor", s.MinActiveTabs, "evicted", evicted)
			break
		}

		if err := w.discard(ctx, tab); err != nil {
			w.counters.failures.Add(1)
			w.logger.Error("tab suspend failed",
				"tab", int64(tab.ID), "url_hash", model.URLHash(tab.URL), "err", err)
			continue
		}
		evicted++
	}

	w.counters.evicted.Add(int64(evicted))
	if evicted > 0 {
		w.logger.Info("scan finished", "evicted", evicted, "tabs", len(tabs))
	}
	return evicted
}

// ForceEvictNow suspends every unexcluded tab right now: the idle timeout and
// the active floor are both ignored on this user-initiated path.
func (w *Worker) ForceEvictNow(ctx context.Context) int {
	s := w.settings.Current()

	tabs, err := w.host.QueryAll(ctx)
	if err != nil {
		w.logger.Error("tab query failed, forced suspend aborted", "err", err)
		return 0
	}

	evicted := 0
	for _, tab := range tabs {
		if policy.IsExcluded(tab, s) {
			continue
		}
		if err := w.discard(ctx, tab); err != nil {
			w.counters.failures.Add(1)
			w.logger.Error("tab suspend failed",
				"tab", int64(tab.ID), "url_hash", model.URLHash(tab.URL), "err", err)
			continue
		}
		evicted++
	}

	w.counters.evicted.Add(int64(evicted))
	w.logger.Info("forced suspend finished", "evicted", evicted, "tabs", len(tabs))
	return evicted
}

func (w *Worker) discard(ctx context.Context, tab model.Tab) error {
	w.pacer.Take()
	return w.host.Discard(ctx, tab.ID)
}
