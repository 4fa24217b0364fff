package tracker

import "sync/atomic"

type trackerCounters struct {
	touches atomic.Int64
	forgets atomic.Int64
	seeds   atomic.Int64
}

func (c *trackerCounters) snapshot() (touches, forgets, seeds int64) {
	return c.touches.Load(), c.forgets.Load(), c.seeds.Load()
}

func newTrackerCounters() *trackerCounters {
	return &trackerCounters{}
}
