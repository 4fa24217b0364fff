package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/rs/zerolog/log"

	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/config"
)

var settingsKey = []byte("settings")

// Pebble stores the settings record in an embedded pebble database. Writes are
// synced: a settings change must survive an immediate crash.
type Pebble struct {
	db *pebble.DB

	mu   sync.Mutex
	subs []func(config.Settings)
}

func OpenPebble(path string) (*Pebble, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open settings store %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("settings store opened")
	return &Pebble{db: db}, nil
}

func (p *Pebble) Get(ctx context.Context) (config.Settings, bool, error) {
	if err := ctx.Err(); err != nil {
		return config.Settings{}, false, err
	}

	data, closer, err := p.db.Get(settingsKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return config.Settings{}, false, nil
	}
	if err != nil {
		return config.Settings{}, false, fmt.Errorf("read settings record: %w", err)
	}
	defer closer.Close()

	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		log.Err(err).Msg("settings record is corrupt")
		return config.Settings{}, false, fmt.Errorf("decode settings record: %w", err)
	}
	return decodeRecord(r), true, nil
}

func (p *Pebble) Set(ctx context.Context, s config.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(encodeRecord(s))
	if err != nil {
		return fmt.Errorf("encode settings record: %w", err)
	}
	if err := p.db.Set(settingsKey, data, pebble.Sync); err != nil {
		log.Err(err).Msg("settings record write failed")
		return fmt.Errorf("write settings record: %w", err)
	}
	log.Debug().Msg("settings record written")

	p.notify(s)
	return nil
}

func (p *Pebble) OnChange(fn func(config.Settings)) {
	p.mu.Lock()
	p.subs = append(p.subs, fn)
	p.mu.Unlock()
}

func (p *Pebble) notify(s config.Settings) {
	p.mu.Lock()
	subs := make([]func(config.Settings), len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}

func (p *Pebble) Close() error {
	return p.db.Close()
}
