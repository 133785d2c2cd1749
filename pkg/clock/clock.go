// Package clock abstracts time so tests can control it. The simulator's
// streaming delays, exit-hint windows, and hook timeouts all go through a
// Clock; production code uses SystemClock and tests use FakeClock.
package clock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Clock is the time source used throughout the simulator.
type Clock interface {
	// NowMillis returns the current time as milliseconds since the Unix epoch.
	NowMillis() int64

	// Now returns the current wall-clock time.
	Now() time.Time

	// Sleep blocks for d or until ctx is cancelled.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock reads real time.
type SystemClock struct{}

// NewSystem returns a real clock.
func NewSystem() *SystemClock { return &SystemClock{} }

func (*SystemClock) NowMillis() int64 { return time.Now().UnixMilli() }

func (*SystemClock) Now() time.Time { return time.Now() }

func (*SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FakeClock is a controllable clock for tests. Sleep either returns
// immediately (auto-advance mode, the default) or blocks until Advance moves
// time past the deadline.
type FakeClock struct {
	millis      atomic.Int64
	autoAdvance bool

	mu      sync.Mutex
	waiters []waiter
}

type waiter struct {
	deadline int64
	ch       chan struct{}
}

// NewFake returns a fake clock starting at start with auto-advancing sleeps.
func NewFake(start time.Time) *FakeClock {
	c := &FakeClock{autoAdvance: true}
	c.millis.Store(start.UnixMilli())
	return c
}

// NewFakeManual returns a fake clock whose sleeps block until Advance.
func NewFakeManual(start time.Time) *FakeClock {
	c := NewFake(start)
	c.autoAdvance = false
	return c
}

func (c *FakeClock) NowMillis() int64 { return c.millis.Load() }

func (c *FakeClock) Now() time.Time { return time.UnixMilli(c.millis.Load()).UTC() }

// Advance moves the clock forward and wakes any sleeps whose deadline passed.
func (c *FakeClock) Advance(d time.Duration) {
	now := c.millis.Add(d.Milliseconds())
	c.mu.Lock()
	remaining := c.waiters[:0]
	for _, w := range c.waiters {
		if w.deadline <= now {
			close(w.ch)
		} else {
			remaining = append(remaining, w)
		}
	}
	c.waiters = remaining
	c.mu.Unlock()
}

func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if c.autoAdvance {
		c.millis.Add(d.Milliseconds())
		return ctx.Err()
	}
	w := waiter{deadline: c.millis.Load() + d.Milliseconds(), ch: make(chan struct{})}
	c.mu.Lock()
	c.waiters = append(c.waiters, w)
	c.mu.Unlock()
	select {
	case <-w.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
