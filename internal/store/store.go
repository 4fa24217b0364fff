// Package store persists the single settings record and notifies subscribers
// on change. Activity timestamps are never persisted, only settings.
package store

import (
	"context"
	"time"

	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/config"
)

// Store is the settings persistence collaborator.
type Store interface {
	// Get returns the stored settings. ok is false when no record exists yet.
	Get(ctx context.Context) (s config.Settings, ok bool, err error)

	// Set persists the record and then fires every OnChange callback with the
	// new value, in registration order, on the caller's goroutine.
	Set(ctx context.Context, s config.Settings) error

	// OnChange registers a callback invoked after each successful Set.
	OnChange(fn func(config.Settings))

	Close() error
}

// record is the stored wire form. Durations are kept as whole seconds so the
// record stays readable and independent of Go's duration encoding.
type record struct {
	Enabled            bool  `json:"enabled"`
	InactiveTimeoutSec int64 `json:"inactive_timeout_sec"`
	CheckIntervalSec   int64 `json:"check_interval_sec"`
	ExcludePinned      bool  `json:"exclude_pinned"`
	ExcludeAudible     bool  `json:"exclude_audible"`
	MinActiveTabs      int   `json:"min_active_tabs"`
}

func encodeRecord(s config.Settings) record {
	return record{
		Enabled:            s.Enabled,
		InactiveTimeoutSec: int64(s.InactiveTimeout.Seconds()),
		CheckIntervalSec:   int64(s.CheckInterval.Seconds()),
		ExcludePinned:      s.ExcludePinned,
		ExcludeAudible:     s.ExcludeAudible,
		MinActiveTabs:      s.MinActiveTabs,
	}
}

func decodeRecord(r record) config.Settings {
	s := config.Settings{
		Enabled:         r.Enabled,
		InactiveTimeout: secs(r.InactiveTimeoutSec),
		CheckInterval:   secs(r.CheckIntervalSec),
		ExcludePinned:   r.ExcludePinned,
		ExcludeAudible:  r.ExcludeAudible,
		MinActiveTabs:   r.MinActiveTabs,
	}
	s.Adjust()
	return s
}

func secs(v int64) time.Duration {
	return time.Duration(v) * time.Second
}
