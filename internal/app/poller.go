package app

import (
	"context"
	"time"

	"github.com/five82/rolodex/internal/state"
)

const (
	defaultPollInterval = 10 * time.Second
	maxBackoff          = 30 * time.Second
)

// Refresher re-queries the contacts for the current search term.
// *browser.Browser implements it.
type Refresher interface {
	Refresh(ctx context.Context) state.Snapshot
	ForgetImageMisses()
}

// StartPoller launches a background goroutine that refreshes at a fixed
// cadence, backing off while queries keep failing. A receive on changes
// triggers an immediate refresh and lets failed thumbnails be retried.
// Every snapshot is handed to publish. It returns immediately.
func StartPoller(ctx context.Context, r Refresher, interval time.Duration, changes <-chan struct{}, publish func(state.Snapshot)) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		failures := 0
		for {
			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-changes:
				timer.Stop()
				r.ForgetImageMisses()
			case <-timer.C:
			}

			snap := r.Refresh(ctx)
			if ctx.Err() != nil {
				return
			}
			failures = snap.ConsecutiveFailures
			if publish != nil {
				publish(snap)
			}
		}
	}()
}

// calculateBackoff doubles the interval for every consecutive failure, up
// to maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for range failures {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
