// Package events serializes host lifecycle events into tracker mutations.
// A single consumer goroutine applies one event at a time, so the activity map
// never sees two handlers interleaving mid-mutation.
package events

import (
	"context"
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/internal/tracker"
	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/model"
)

type Kind int

const (
	KindActivated Kind = iota + 1
	KindCreated
	KindUpdated
	KindRemoved
)

func (k Kind) String() string {
	switch k {
	case KindActivated:
		return "activated"
	case KindCreated:
		return "created"
	case KindUpdated:
		return "updated"
	case KindRemoved:
		return "removed"
	}
	return "unknown"
}

// Event is one host lifecycle notification. Tab is set for Created, Change for
// Updated; ID is always set.
type Event struct {
	Kind   Kind
	ID     model.TabID
	Tab    model.Tab
	Change model.TabChange
}

type Dispatcher struct {
	ctx     context.Context
	cancel  context.CancelFunc
	clock   clock.Clock
	logger  *slog.Logger
	tracker *tracker.Tracker
	eventCh chan Event
	done    chan struct{}
}

func New(ctx context.Context, clk clock.Clock, logger *slog.Logger, tr *tracker.Tracker) *Dispatcher {
	ctx, cancel := context.WithCancel(ctx)
	d := &Dispatcher{
		ctx:     ctx,
		cancel:  cancel,
		clock:   clk,
		logger:  logger,
		tracker: tr,
		eventCh: make(chan Event, 256),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish queues an event. Blocks when the queue is full (back-pressure, never
// drop); a no-op once the dispatcher is closed.
func (d *Dispatcher) Publish(ev Event) {
	select {
	case <-d.ctx.Done():
	case d.eventCh <- ev:
	}
}

func (d *Dispatcher) Close() error {
	d.cancel()
	<-d.done
	return nil
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		select {
		case <-d.ctx.Done():
			return
		case ev := <-d.eventCh:
			d.apply(ev)
		}
	}
}

func (d *Dispatcher) apply(ev Event) {
	now := d.clock.Now()
	switch ev.Kind {
	case KindActivated:
		d.tracker.Touch(ev.ID, now)
	case KindCreated:
		d.tracker.Touch(ev.Tab.ID, now)
	case KindUpdated:
		// only audio start and navigation count as activity
		if (ev.Change.Audible != nil && *ev.Change.Audible) || ev.Change.URL != nil {
			d.tracker.Touch(ev.ID, now)
		}
	case KindRemoved:
		d.tracker.Forget(ev.ID)
	default:
		d.logger.Warn("unknown lifecycle event dropped", "kind", int(ev.Kind), "tab", int64(ev.ID))
	}
}
