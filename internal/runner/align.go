package runner

import (
	"context"
	"time"
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Aligner waits for the start of a fresh rate limit window. Windows are
// assumed to reset on the minute, so runs begin at second 1.
type Aligner struct {
	Now   func() time.Time
	Sleep SleepFunc
}

func NewAligner() Aligner {
	return Aligner{Now: time.Now, Sleep: Sleep}
}

// WaitFor returns how long to wait from now until second 1 of the next
// minute. Seconds 0 and 1 need no wait.
func WaitFor(now time.Time) time.Duration {
	sec := now.Second()
	if sec <= 1 {
		return 0
	}
	return time.Duration(60-sec+1) * time.Second
}

// Align blocks until the next window and returns the aligned start time.
// onWait is called with the wait duration before blocking, if there is one.
func (a Aligner) Align(ctx context.Context, onWait func(time.Duration)) (time.Time, error) {
	now, sleep := a.Now, a.Sleep
	if now == nil {
		now = time.Now
	}
	if sleep == nil {
		sleep = Sleep
	}

	if d := WaitFor(now()); d > 0 {
		if onWait != nil {
			onWait(d)
		}
		if err := sleep(ctx, d); err != nil {
			return time.Time{}, err
		}
	}
	return now(), nil
}

// Sleep is a context-aware time.Sleep.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
