package store

import (
	"context"

	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/config"
)

// NoOp is a Store that persists nothing. Used when no store path is
// configured: settings then live only as long as the process.
type NoOp struct{}

func NewNoOp() NoOp { return NoOp{} }

// Get always reports an absent record.
func (NoOp) Get(ctx context.Context) (config.Settings, bool, error) {
	return config.Settings{}, false, nil
}

// Set does nothing and returns nil.
func (NoOp) Set(ctx context.Context, s config.Settings) error {
	return nil
}

// OnChange never fires.
func (NoOp) OnChange(fn func(config.Settings)) {}

// Close does nothing and returns nil.
func (NoOp) Close() error {
	return nil
}
