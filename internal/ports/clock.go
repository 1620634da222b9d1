package ports

import (
	"context"
	"time"
)

// Waiter blocks for d or until ctx is done. label describes what is being waited for.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration, label string) error
}

type TimerWaiter struct{}

func (TimerWaiter) Wait(ctx context.Context, d time.Duration, _ string) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
