package scheduler

import "sync/atomic"

type schedulerCounters struct {
	scans    atomic.Int64
	skipped  atomic.Int64
	evicted  atomic.Int64
	failures atomic.Int64
}

func (c *schedulerCounters) snapshot() (scans, skipped, evicted, failures int64) {
	return c.scans.Load(), c.skipped.Load(), c.evicted.Load(), c.failures.Load()
}

func newSchedulerCounters() *schedulerCounters {
	return &schedulerCounters{}
}
