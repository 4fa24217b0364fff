package config

import "time"

// TelemetryCfg enables periodic structured stat logs. Nil disables them.
type TelemetryCfg struct {
	// Interval between stat log lines. Example: "30s".
	Interval time.Duration `yaml:"interval"`
}

func (cfg *TelemetryCfg) Enabled() bool {
	return cfg != nil && cfg.Interval > 0
}
