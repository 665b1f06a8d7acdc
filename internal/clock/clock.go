// Package clock drives periodic refreshes of time-derived values such as the
// running record's elapsed minutes.
package clock

import (
	"context"
	"time"
)

// Ticker polls the wall clock and calls OnMinute whenever the minute changes.
// It never touches the record store.
type Ticker struct {
	Interval time.Duration
	Now      func() time.Time
	OnMinute func(now time.Time)
}

// New returns a Ticker polling at interval. Intervals outside 1s..60s are clamped.
func New(interval time.Duration, onMinute func(time.Time)) *Ticker {
	return &Ticker{Interval: clamp(interval), Now: time.Now, OnMinute: onMinute}
}

func clamp(d time.Duration) time.Duration {
	if d < time.Second {
		return time.Second
	}
	if d > time.Minute {
		return time.Minute
	}
	return d
}

// Run fires OnMinute once immediately and then on every minute boundary
// observed by a poll, until ctx is done.
func (t *Ticker) Run(ctx context.Context) error {
	now := t.Now
	if now == nil {
		now = time.Now
	}
	last := now().Truncate(time.Minute)
	t.fire(last)

	ticker := time.NewTicker(clamp(t.Interval))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cur := now()
			if t.step(&last, cur) {
				t.fire(cur)
			}
		}
	}
}

// step reports whether cur is in a different minute than *last and advances it.
func (t *Ticker) step(last *time.Time, cur time.Time) bool {
	m := cur.Truncate(time.Minute)
	if m.Equal(*last) {
		return false
	}
	*last = m
	return true
}

func (t *Ticker) fire(now time.Time) {
	if t.OnMinute != nil {
		t.OnMinute(now)
	}
}
