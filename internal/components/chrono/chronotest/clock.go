// Package chronotest provides a manually driven chrono.TimeAPI.
package chronotest

import (
	"context"
	"sync"
	"time"
)

// Clock is a chrono.TimeAPI whose time only moves when Sleep or Advance is called.
type Clock struct {
	lock   sync.Mutex
	now    time.Time
	sleeps []time.Duration

	// AfterSleep, if set, is called with the new time after every Sleep, before Sleep returns.
	AfterSleep func(now time.Time)
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *Clock) Location() *time.Location {
	return c.Now().Location()
}

func (c *Clock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
}

func (c *Clock) Set(t time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = t
}

// Sleep advances the clock by d instead of blocking.
func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.lock.Lock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	now := c.now
	c.lock.Unlock()

	if c.AfterSleep != nil {
		c.AfterSleep(now)
	}
	return ctx.Err()
}

// Sleeps returns every duration passed to Sleep so far.
func (c *Clock) Sleeps() []time.Duration {
	c.lock.Lock()
	defer c.lock.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}
