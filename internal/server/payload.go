package server

import (
	"time"

	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/config"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/model"
)

// Durations cross the wire as whole seconds, matching the stored record.
type settingsPayload struct {
	Enabled            bool  `json:"enabled"`
	InactiveTimeoutSec int64 `json:"inactive_timeout_sec"`
	CheckIntervalSec   int64 `json:"check_interval_sec"`
	ExcludePinned      bool  `json:"exclude_pinned"`
	ExcludeAudible     bool  `json:"exclude_audible"`
	MinActiveTabs      int   `json:"min_active_tabs"`
}

func settingsToPayload(s config.Settings) settingsPayload {
	return settingsPayload{
		Enabled:            s.Enabled,
		InactiveTimeoutSec: int64(s.InactiveTimeout.Seconds()),
		CheckIntervalSec:   int64(s.CheckInterval.Seconds()),
		ExcludePinned:      s.ExcludePinned,
		ExcludeAudible:     s.ExcludeAudible,
		MinActiveTabs:      s.MinActiveTabs,
	}
}

type settingsPatch struct {
	Enabled            *bool  `json:"enabled,omitempty"`
	InactiveTimeoutSec *int64 `json:"inactive_timeout_sec,omitempty"`
	CheckIntervalSec   *int64 `json:"check_interval_sec,omitempty"`
	ExcludePinned      *bool  `json:"exclude_pinned,omitempty"`
	ExcludeAudible     *bool  `json:"exclude_audible,omitempty"`
	MinActiveTabs      *int   `json:"min_active_tabs,omitempty"`
}

func (p settingsPatch) toPatch() config.Patch {
	out := config.Patch{
		Enabled:        p.Enabled,
		ExcludePinned:  p.ExcludePinned,
		ExcludeAudible: p.ExcludeAudible,
		MinActiveTabs:  p.MinActiveTabs,
	}
	if p.InactiveTimeoutSec != nil {
		d := time.Duration(*p.InactiveTimeoutSec) * time.Second
		out.InactiveTimeout = &d
	}
	if p.CheckIntervalSec != nil {
		d := time.Duration(*p.CheckIntervalSec) * time.Second
		out.CheckInterval = &d
	}
	return out
}

type saveResponse struct {
	Success  bool            `json:"success"`
	Settings settingsPayload `json:"settings"`
}

type statsPayload struct {
	Total     int  `json:"total"`
	Active    int  `json:"active"`
	Discarded int  `json:"discarded"`
	Enabled   bool `json:"enabled"`
}

type evictResponse struct {
	Evicted int `json:"evicted"`
}

type pendingResponse struct {
	Suspend []int64 `json:"suspend"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type tabPayload struct {
	ID        int64  `json:"id"`
	Active    bool   `json:"active"`
	Pinned    bool   `json:"pinned"`
	Audible   bool   `json:"audible"`
	Discarded bool   `json:"discarded"`
	URL       string `json:"url"`
	Title     string `json:"title"`
}

func (p tabPayload) toTab() model.Tab {
	return model.Tab{
		ID:        model.TabID(p.ID),
		Active:    p.Active,
		Pinned:    p.Pinned,
		Audible:   p.Audible,
		Discarded: p.Discarded,
		URL:       p.URL,
		Title:     p.Title,
	}
}

// tabEvent is one lifecycle notification from the companion.
type tabEvent struct {
	Kind    string      `json:"kind"` // activated | created | updated | removed
	ID      int64       `json:"id"`
	Tab     *tabPayload `json:"tab,omitempty"`     // created
	Audible *bool       `json:"audible,omitempty"` // updated
	URL     *string     `json:"url,omitempty"`     // updated
}

type eventsResponse struct {
	Accepted int `json:"accepted"`
}
