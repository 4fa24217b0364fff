package config

// EvictionCfg tunes how aggressively suspend calls are issued to the host.
type EvictionCfg struct {
	// CallsPerSec caps the number of suspend calls sent to the host per second
	// during a scan. The host processes each call with real work (serializing
	// the tab, swapping it for a placeholder), so an unpaced burst over a large
	// window set can make the browser visibly stutter.
	CallsPerSec int `yaml:"calls_per_sec"`
}

func (cfg *EvictionCfg) Enabled() bool {
	return cfg != nil && cfg.CallsPerSec > 0
}
