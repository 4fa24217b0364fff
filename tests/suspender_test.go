package tests

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	suspender "github.com/abrorxon-karimxonov/zen-auto-inactive-tabs"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/config"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/events"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/store"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/model"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/tests/help"
)

// End to end: idle tabs get suspended by the scheduled scan, excluded ones
// survive, stats reflect the result.
func TestIdleTabsAreSuspended(t *testing.T) {
	mock := clock.NewMock()
	reg := help.Browser()

	sus, err := suspender.New(t.Context(), help.Cfg(), help.Logger(), reg, store.NewMemory(),
		suspender.WithClock(mock))
	require.NoError(t, err)
	defer func() { require.NoError(t, sus.Close()) }()

	// nothing is idle past the timeout yet
	mock.Add(10 * time.Second)
	require.Zero(t, sus.ScanNow(t.Context()))

	// now everything unexcluded is long idle
	mock.Add(time.Minute)
	require.Equal(t, 2, sus.ScanNow(t.Context()))
	require.ElementsMatch(t, []model.TabID{5, 6}, reg.DrainPending())

	stats, err := sus.Stats(t.Context())
	require.NoError(t, err)
	require.Equal(t, 6, stats.Total)
	require.Equal(t, 2, stats.Discarded)
	require.Equal(t, 1, stats.Active)
}

// Activity reported through the event path keeps a tab alive across a scan.
func TestReportedActivityPreventsSuspension(t *testing.T) {
	mock := clock.NewMock()
	reg := help.Browser()

	sus, err := suspender.New(t.Context(), help.Cfg(), help.Logger(), reg, store.NewMemory(),
		suspender.WithClock(mock))
	require.NoError(t, err)
	defer func() { require.NoError(t, sus.Close()) }()

	mock.Add(25 * time.Second)
	sus.Publish(events.Event{Kind: events.KindActivated, ID: 5})
	// give the serialized dispatcher a moment to apply the touch
	time.Sleep(100 * time.Millisecond)

	mock.Add(10 * time.Second) // tab 6 idle 35s, tab 5 idle 10s
	require.Equal(t, 1, sus.ScanNow(t.Context()))
	require.Equal(t, []model.TabID{6}, reg.DrainPending())
}

// Disabling through settings stops the scheduled scan; the forced path still
// works and ignores the timeout.
func TestDisabledScanAndForcedSuspension(t *testing.T) {
	mock := clock.NewMock()
	reg := help.Browser()

	sus, err := suspender.New(t.Context(), help.DisabledCfg(), help.Logger(), reg, store.NewMemory(),
		suspender.WithClock(mock))
	require.NoError(t, err)
	defer func() { require.NoError(t, sus.Close()) }()

	mock.Add(time.Hour)
	require.Zero(t, sus.ScanNow(t.Context()))

	// force: tabs 5 and 6 go regardless of enabled and timeout
	require.Equal(t, 2, sus.ForceEvictNow(t.Context()))
	require.ElementsMatch(t, []model.TabID{5, 6}, reg.DrainPending())
}

// A settings change saved at runtime is persisted and visible on the next scan.
func TestRuntimeSettingsChange(t *testing.T) {
	mock := clock.NewMock()
	reg := help.Browser()
	st := store.NewMemory()

	sus, err := suspender.New(t.Context(), help.Cfg(), help.Logger(), reg, st,
		suspender.WithClock(mock))
	require.NoError(t, err)
	defer func() { require.NoError(t, sus.Close()) }()

	// stop sparing pinned tabs
	noPin := false
	_, err = sus.SaveSettings(t.Context(), config.Patch{ExcludePinned: &noPin})
	require.NoError(t, err)

	mock.Add(time.Minute)
	require.Equal(t, 3, sus.ScanNow(t.Context())) // 2 (pinned), 5, 6
	require.ElementsMatch(t, []model.TabID{2, 5, 6}, reg.DrainPending())

	persisted, ok, err := st.Get(t.Context())
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, persisted.ExcludePinned)
}

// Settings written to the store by someone else reach the running scheduler
// through the change notification.
func TestStoreChangeNotificationRefreshesCache(t *testing.T) {
	st := store.NewMemory()
	sus, err := suspender.New(t.Context(), help.Cfg(), help.Logger(), help.Browser(), st)
	require.NoError(t, err)
	defer func() { require.NoError(t, sus.Close()) }()

	next := sus.Settings()
	next.MinActiveTabs = 4
	require.NoError(t, st.Set(t.Context(), next))

	require.Equal(t, 4, sus.Settings().MinActiveTabs)
}

// Suspended state does not linger: restarting the daemon reseeds every tab as
// freshly active, so nothing is suspended right after a restart.
func TestRestartTreatsTabsAsFresh(t *testing.T) {
	mock := clock.NewMock()
	reg := help.Browser()

	sus, err := suspender.New(t.Context(), help.Cfg(), help.Logger(), reg, store.NewMemory(),
		suspender.WithClock(mock))
	require.NoError(t, err)

	mock.Add(time.Minute)
	require.Equal(t, 2, sus.ScanNow(t.Context()))
	require.NoError(t, sus.Close())

	// "restart": a fresh suspender over the same browser state
	reg2 := help.Browser()
	sus2, err := suspender.New(t.Context(), help.Cfg(), help.Logger(), reg2, store.NewMemory(),
		suspender.WithClock(mock))
	require.NoError(t, err)
	defer func() { require.NoError(t, sus2.Close()) }()

	require.Zero(t, sus2.ScanNow(t.Context()))
}
