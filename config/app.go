package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App is the daemon-level configuration. Settings carried here are only the
// initial values: once a record exists in the settings store, the store wins.
type App struct {
	// Listen is the HTTP command interface address.
	Listen string `yaml:"listen"`

	// StorePath is the settings store directory. Empty disables persistence
	// (settings then live only for the daemon's lifetime).
	StorePath string `yaml:"store_path"`

	Settings  Settings      `yaml:"settings"`
	Eviction  *EvictionCfg  `yaml:"eviction"`
	Telemetry *TelemetryCfg `yaml:"telemetry"`
}

func DefaultApp() *App {
	return &App{
		Listen:   "127.0.0.1:7332",
		Settings: DefaultSettings(),
		Eviction: &EvictionCfg{CallsPerSec: 20},
	}
}

func (cfg *App) Adjust() {
	if cfg.Listen == "" {
		cfg.Listen = DefaultApp().Listen
	}
	cfg.Settings.Adjust()
}

func LoadApp(path string) (*App, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	cfg := DefaultApp()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	cfg.Adjust()

	return cfg, nil
}
