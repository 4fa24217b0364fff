package scheduler

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/config"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/host"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/tracker"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/model"
)

const waitFor = 3 * time.Second

type testSource struct {
	mu sync.Mutex
	s  config.Settings
}

func (src *testSource) Current() config.Settings {
	src.mu.Lock()
	defer src.mu.Unlock()
	return src.s
}

func (src *testSource) set(s config.Settings) {
	src.mu.Lock()
	src.s = s
	src.mu.Unlock()
}

// scanCfg keeps the timer far away so tests drive scans directly.
func scanCfg() config.Settings {
	return config.Settings{
		Enabled:         true,
		InactiveTimeout: 30 * time.Second,
		CheckInterval:   time.Hour,
	}
}

func newWorker(t *testing.T, s config.Settings, reg *host.Registry) (*Worker, *tracker.Tracker, *clock.Mock, *testSource) {
	t.Helper()
	mock := clock.NewMock()
	tr := tracker.New()
	src := &testSource{s: s}
	w := New(t.Context(), mock, slog.Default(), tr, reg, src, nil)
	t.Cleanup(func() { _ = w.Close() })
	return w, tr, mock, src
}

// Three idle tabs plus the focused one, floor of one: the floor counts the
// focused tab too, so all three idle tabs go.
func TestScanFloorCountsActiveTab(t *testing.T) {
	s := scanCfg()
	s.MinActiveTabs = 1

	reg := host.NewRegistry()
	reg.Upsert(model.Tab{ID: 1, Active: true, URL: "https://a"})
	reg.Upsert(model.Tab{ID: 2, URL: "https://b"})
	reg.Upsert(model.Tab{ID: 3, URL: "https://c"})
	reg.Upsert(model.Tab{ID: 4, URL: "https://d"})

	w, tr, mock, _ := newWorker(t, s, reg)
	tr.Seed([]model.Tab{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}, mock.Now())
	mock.Add(40 * time.Second)

	require.Equal(t, 3, w.ScanAndEvict(t.Context()))
	require.ElementsMatch(t, []model.TabID{2, 3, 4}, reg.DrainPending())
}

// Floor reached mid-pass stops the scan entirely: earliest-enumerated idle
// tabs are suspended, later ones spared.
func TestScanFloorBreaksNotContinues(t *testing.T) {
	s := scanCfg()
	s.MinActiveTabs = 2

	reg := host.NewRegistry()
	for id := model.TabID(1); id <= 4; id++ {
		reg.Upsert(model.Tab{ID: id, URL: "https://example.com"})
	}

	w, tr, mock, _ := newWorker(t, s, reg)
	tr.Seed([]model.Tab{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}, mock.Now())
	mock.Add(time.Minute)

	require.Equal(t, 2, w.ScanAndEvict(t.Context()))
	// enumeration order is the tie-break: 1 and 2 went, 3 and 4 survived
	require.Equal(t, []model.TabID{1, 2}, reg.DrainPending())
}

func TestScanDisabledDoesNothing(t *testing.T) {
	s := scanCfg()
	s.Enabled = false

	reg := host.NewRegistry()
	reg.Upsert(model.Tab{ID: 1, URL: "https://example.com"})

	w, _, mock, _ := newWorker(t, s, reg)
	mock.Add(time.Hour)

	require.Equal(t, 0, w.ScanAndEvict(t.Context()))
	require.Empty(t, reg.DrainPending())

	scans, _, evicted, _ := w.Metrics()
	require.Zero(t, scans)
	require.Zero(t, evicted)
}

// An untracked tab discovered mid-scan is stamped just past the timeout and
// suspended in that same pass.
func TestScanUntrackedTabEvictedSamePass(t *testing.T) {
	reg := host.NewRegistry()
	reg.Upsert(model.Tab{ID: 1, URL: "https://example.com"})

	w, tr, mock, _ := newWorker(t, scanCfg(), reg)

	require.Equal(t, 1, w.ScanAndEvict(t.Context()))
	require.Equal(t, []model.TabID{1}, reg.DrainPending())

	// the synthesized stamp was persisted
	last, ok := tr.LastActive(1)
	require.True(t, ok)
	require.True(t, last.Before(mock.Now()))
}

func TestScanStillActiveTabsSkipped(t *testing.T) {
	reg := host.NewRegistry()
	reg.Upsert(model.Tab{ID: 1, URL: "https://example.com"})

	w, tr, mock, _ := newWorker(t, scanCfg(), reg)
	tr.Touch(1, mock.Now())
	mock.Add(10 * time.Second) // idle 10s <= timeout 30s

	require.Equal(t, 0, w.ScanAndEvict(t.Context()))
	require.Empty(t, reg.DrainPending())
}

// Re-seeding treats previously long-idle tabs as freshly active.
func TestSeedThenScanEvictsNothing(t *testing.T) {
	reg := host.NewRegistry()
	reg.Upsert(model.Tab{ID: 1, URL: "https://a"})
	reg.Upsert(model.Tab{ID: 2, URL: "https://b"})

	w, tr, mock, _ := newWorker(t, scanCfg(), reg)
	tr.Touch(1, mock.Now().Add(-time.Hour))
	tr.Touch(2, mock.Now().Add(-time.Hour))

	tabs := []model.Tab{{ID: 1}, {ID: 2}}
	tr.Seed(tabs, mock.Now())

	require.Equal(t, 0, w.ScanAndEvict(t.Context()))
	require.Empty(t, reg.DrainPending())
}

func TestScanFailureIsNonFatal(t *testing.T) {
	reg := host.NewRegistry()
	reg.Upsert(model.Tab{ID: 1, URL: "https://a"})
	reg.Upsert(model.Tab{ID: 2, URL: "https://b"})
	reg.Upsert(model.Tab{ID: 3, URL: "https://c"})
	reg.FailDiscard(2, errors.New("tab is not discardable"))

	w, tr, mock, _ := newWorker(t, scanCfg(), reg)
	tr.Seed([]model.Tab{{ID: 1}, {ID: 2}, {ID: 3}}, mock.Now())
	mock.Add(time.Minute)

	require.Equal(t, 2, w.ScanAndEvict(t.Context()))
	require.Equal(t, []model.TabID{1, 3}, reg.DrainPending())

	_, _, _, failures := w.Metrics()
	require.Equal(t, int64(1), failures)
}

// Force path: exclusion rules only, idle timeout and floor both ignored.
func TestForceEvictIgnoresTimeoutAndFloor(t *testing.T) {
	s := scanCfg()
	s.ExcludePinned = true
	s.MinActiveTabs = 10 // would block every scheduled eviction

	reg := host.NewRegistry()
	reg.Upsert(model.Tab{ID: 1, Pinned: true, URL: "https://a"})
	reg.Upsert(model.Tab{ID: 2, URL: "https://b"})
	reg.Upsert(model.Tab{ID: 3, Pinned: true, URL: "https://c"})
	reg.Upsert(model.Tab{ID: 4, URL: "https://d"})
	reg.Upsert(model.Tab{ID: 5, URL: "https://e"})

	w, tr, mock, _ := newWorker(t, s, reg)
	tr.Seed([]model.Tab{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}, mock.Now())
	// nothing is past the timeout, the force path does not care

	require.Equal(t, 3, w.ForceEvictNow(t.Context()))
	require.Equal(t, []model.TabID{2, 4, 5}, reg.DrainPending())
}

func TestTimerDrivesScans(t *testing.T) {
	s := scanCfg()
	s.CheckInterval = time.Second

	reg := host.NewRegistry()
	w, _, mock, _ := newWorker(t, s, reg)

	require.Eventually(t, func() bool {
		mock.Add(time.Second)
		scans, _, _, _ := w.Metrics()
		return scans >= 1
	}, waitFor, 10*time.Millisecond)
}

func TestRestartReplacesTimer(t *testing.T) {
	reg := host.NewRegistry()
	w, _, mock, _ := newWorker(t, scanCfg(), reg) // 1h interval

	w.Restart(time.Second)

	require.Eventually(t, func() bool {
		mock.Add(time.Second)
		scans, _, _, _ := w.Metrics()
		return scans >= 1
	}, waitFor, 10*time.Millisecond)
}

// A tick firing while a pass still runs is skipped, never queued.
func TestOverlappingTickSkipped(t *testing.T) {
	s := scanCfg()
	s.CheckInterval = time.Second

	reg := host.NewRegistry()
	w, _, mock, _ := newWorker(t, s, reg)

	w.scanMu.Lock()
	defer w.scanMu.Unlock()

	require.Eventually(t, func() bool {
		mock.Add(time.Second)
		_, skipped, _, _ := w.Metrics()
		return skipped >= 1
	}, waitFor, 10*time.Millisecond)

	scans, _, _, _ := w.Metrics()
	require.Zero(t, scans)
}

// Settings changes apply on the very next pass without a restart.
func TestScanReReadsSettings(t *testing.T) {
	reg := host.NewRegistry()
	reg.Upsert(model.Tab{ID: 1, URL: "https://example.com"})

	w, tr, mock, src := newWorker(t, scanCfg(), reg)
	tr.Touch(1, mock.Now())
	mock.Add(time.Minute)

	off := scanCfg()
	off.Enabled = false
	src.set(off)
	require.Equal(t, 0, w.ScanAndEvict(t.Context()))

	src.set(scanCfg())
	require.Equal(t, 1, w.ScanAndEvict(t.Context()))
}
