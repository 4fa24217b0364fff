package store

import (
	"context"
	"sync"

	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/config"
)

// Memory keeps the record in process memory. Used in tests and wherever
// persistence is not wanted but change notifications still are.
type Memory struct {
	mu       sync.Mutex
	settings config.Settings
	present  bool
	subs     []func(config.Settings)
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(ctx context.Context) (config.Settings, bool, error) {
	if err := ctx.Err(); err != nil {
		return config.Settings{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings, m.present, nil
}

func (m *Memory) Set(ctx context.Context, s config.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.settings = s
	m.present = true
	subs := make([]func(config.Settings), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
	return nil
}

func (m *Memory) OnChange(fn func(config.Settings)) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}

func (m *Memory) Close() error {
	return nil
}
