package config

import "time"

const (
	DefaultInactiveTimeout = 30 * time.Minute
	DefaultCheckInterval   = time.Minute
)

// Settings is the runtime suspension policy. It is the single persisted record
// of the settings store; the suspender keeps a process-wide cached copy that is
// refreshed on every store change notification.
type Settings struct {
	// Enabled turns the periodic scan on or off. When false a scan pass is a
	// no-op and returns zero evictions.
	Enabled bool `yaml:"enabled"`

	// InactiveTimeout is how long a tab must stay idle before it becomes
	// eligible for suspension.
	InactiveTimeout time.Duration `yaml:"inactive_timeout"`

	// CheckInterval is the period of the scan timer. Changing it through
	// SaveSettings replaces the running timer.
	CheckInterval time.Duration `yaml:"check_interval"`

	// ExcludePinned spares pinned tabs from suspension.
	ExcludePinned bool `yaml:"exclude_pinned"`

	// ExcludeAudible spares tabs that are currently playing sound.
	ExcludeAudible bool `yaml:"exclude_audible"`

	// MinActiveTabs is the floor: a scheduled scan never shrinks the number of
	// non-suspended tabs below this count. The manual suspend-now path ignores it.
	MinActiveTabs int `yaml:"min_active_tabs"`
}

// Patch is a partial settings update. Nil fields keep their current value.
type Patch struct {
	Enabled         *bool
	InactiveTimeout *time.Duration
	CheckInterval   *time.Duration
	ExcludePinned   *bool
	ExcludeAudible  *bool
	MinActiveTabs   *int
}

func DefaultSettings() Settings {
	return Settings{
		Enabled:         true,
		InactiveTimeout: DefaultInactiveTimeout,
		CheckInterval:   DefaultCheckInterval,
		ExcludePinned:   true,
		ExcludeAudible:  true,
		MinActiveTabs:   0,
	}
}

// Merge applies a partial update and returns the merged copy. The receiver is
// not modified.
func (s Settings) Merge(p Patch) Settings {
	if p.Enabled != nil {
		s.Enabled = *p.Enabled
	}
	if p.InactiveTimeout != nil {
		s.InactiveTimeout = *p.InactiveTimeout
	}
	if p.CheckInterval != nil {
		s.CheckInterval = *p.CheckInterval
	}
	if p.ExcludePinned != nil {
		s.ExcludePinned = *p.ExcludePinned
	}
	if p.ExcludeAudible != nil {
		s.ExcludeAudible = *p.ExcludeAudible
	}
	if p.MinActiveTabs != nil {
		s.MinActiveTabs = *p.MinActiveTabs
	}
	return s
}

// Adjust clamps out-of-range values back to safe defaults instead of failing:
// a corrupt stored record must never take the scheduler down.
func (s *Settings) Adjust() {
	if s.InactiveTimeout <= 0 {
		s.InactiveTimeout = DefaultInactiveTimeout
	}
	if s.CheckInterval <= 0 {
		s.CheckInterval = DefaultCheckInterval
	}
	if s.MinActiveTabs < 0 {
		s.MinActiveTabs = 0
	}
}
