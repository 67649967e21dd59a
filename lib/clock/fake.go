// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock frozen at initial. Time moves only when
// Advance is called.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.changed = sync.NewCond(&clock.mu)
	return clock
}

// FakeClock is a deterministic Clock for tests. It is safe for
// concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waiters []*waiter
	changed *sync.Cond
}

// waiter is a pending ticker registration.
type waiter struct {
	deadline time.Time
	channel  chan time.Time

	// interval reschedules the waiter at deadline+interval after
	// each fire.
	interval time.Duration
	stopped  bool
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NewTicker registers a periodic waiter.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	registered := &waiter{deadline: c.current.Add(d), channel: channel, interval: d}
	c.register(registered)

	return &Ticker{
		C: channel,
		stop: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			registered.stopped = true
		},
	}
}

// register appends w to the pending list. Must be called with c.mu held.
func (c *FakeClock) register(w *waiter) {
	c.waiters = append(c.waiters, w)
	c.changed.Broadcast()
}

// Advance moves time forward by d and fires every waiter whose
// deadline is now due, in deadline order. Sends are non-blocking, so
// a ticker that spans several intervals delivers at most one buffered
// tick.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	target := c.current

	var due []*waiter
	remaining := c.waiters[:0:0]
	for _, w := range c.waiters {
		switch {
		case w.stopped:
		case w.deadline.After(target):
			remaining = append(remaining, w)
		default:
			due = append(due, w)
			if w.interval > 0 {
				for !w.deadline.After(target) {
					w.deadline = w.deadline.Add(w.interval)
				}
				remaining = append(remaining, w)
			}
		}
	}
	c.waiters = remaining
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, w := range due {
		select {
		case w.channel <- target:
		default:
		}
	}
}

// WaitForTimers blocks until at least n waiters are pending.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pendingLocked() < n {
		c.changed.Wait()
	}
}

// PendingCount returns the number of active waiters.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingLocked()
}

func (c *FakeClock) pendingLocked() int {
	count := 0
	for _, w := range c.waiters {
		if !w.stopped {
			count++
		}
	}
	return count
}
