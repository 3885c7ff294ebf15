package redfish

import (
	"context"
	"time"
)

// clock abstracts wall-clock reads and timer waits so the polling loops can
// be driven by a fake clock in tests.
type clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// realClock is the production clock
type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// sleep waits for d or until the context is cancelled. Both polling loops
// check cancellation only here, at the sleep boundary.
func sleep(ctx context.Context, c clock, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.After(d):
		return nil
	}
}

// PollOptions configures one polling loop
type PollOptions struct {
	// Interval is the pause between checks
	Interval time.Duration

	// Timeout is the wall-clock deadline measured from loop start.
	// Network latency counts against it, the same as poll spacing.
	Timeout time.Duration
}

// withDefaults fills zero fields from the given defaults
func (o PollOptions) withDefaults(interval, timeout time.Duration) PollOptions {
	if o.Interval == 0 {
		o.Interval = interval
	}
	if o.Timeout == 0 {
		o.Timeout = timeout
	}
	return o
}
