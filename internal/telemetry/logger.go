// Package telemetry periodically logs scheduler and tracker stats as deltas
// per interval.
package telemetry

import (
	"context"
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/config"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/scheduler"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/tracker"
)

type Logs struct {
	ctx       context.Context
	cancel    context.CancelFunc
	clock     clock.Clock
	cfg       *config.TelemetryCfg
	logger    *slog.Logger
	scheduler *scheduler.Worker
	tracker   *tracker.Tracker
}

func New(
	ctx context.Context,
	clk clock.Clock,
	cfg *config.TelemetryCfg,
	logger *slog.Logger,
	sch *scheduler.Worker,
	tr *tracker.Tracker,
) *Logs {
	ctx, cancel := context.WithCancel(ctx)
	return (&Logs{
		ctx:       ctx,
		cancel:    cancel,
		clock:     clk,
		cfg:       cfg,
		logger:    logger,
		scheduler: sch,
		tracker:   tr,
	}).run()
}

func (l *Logs) Close() error {
	l.cancel()
	return nil
}

func (l *Logs) run() *Logs {
	if l.cfg.Enabled() {
		go l.loop()
	}
	return l
}

func (l *Logs) loop() {
	ticker := l.clock.Ticker(l.cfg.Interval)
	defer ticker.Stop()

	prev := l.snapshot()

	for {
		select {
		case <-l.ctx.Done():
			return

		case <-ticker.C:
			cur := l.snapshot()
			d := delta(prev, cur)
			prev = cur

			common := []any{"interval", l.cfg.Interval.String()}

			l.logger.Info("scheduler",
				append(common,
					"scans", d.scans,
					"skipped_ticks", d.skipped,
					"evicted", d.evicted,
					"failures", d.failures,
				)...,
			)

			l.logger.Info("activity_tracker",
				append(common,
					"tracked", l.tracker.Len(),
					"touches", d.touches,
					"forgets", d.forgets,
				)...,
			)
		}
	}
}

type sample struct {
	scans, skipped, evicted, failures int64
	touches, forgets                  int64
}

func (l *Logs) snapshot() sample {
	var s sample
	s.scans, s.skipped, s.evicted, s.failures = l.scheduler.Metrics()
	s.touches, s.forgets, _ = l.tracker.Metrics()
	return s
}

func delta(prev, cur sample) sample {
	return sample{
		scans:    cur.scans - prev.scans,
		skipped:  cur.skipped - prev.skipped,
		evicted:  cur.evicted - prev.evicted,
		failures: cur.failures - prev.failures,
		touches:  cur.touches - prev.touches,
		forgets:  cur.forgets - prev.forgets,
	}
}
