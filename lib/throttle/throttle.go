package throttle

import (
	"context"
	"time"
)

// Limiter spaces requests out by a fixed interval. It is a plain
// throttle, not a retry or backoff mechanism. A nil Limiter or a zero
// interval never waits, so tests can run at full speed.
type Limiter struct {
	interval time.Duration
	last     time.Time
}

func New(interval time.Duration) *Limiter {
	return &Limiter{interval: interval}
}

// Wait blocks until at least one interval has passed since the last
// call, or until ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.interval <= 0 {
		return nil
	}

	now := time.Now()
	wakeup := l.last.Add(l.interval)
	l.last = now
	if !wakeup.After(now) {
		return nil
	}
	l.last = wakeup

	timer := time.NewTimer(wakeup.Sub(now))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
