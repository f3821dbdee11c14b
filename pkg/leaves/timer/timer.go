// Package timer provides a multi-step leaf act that succeeds once a duration
// has elapsed. It is the reference example of the suspend/resume contract:
// suspending freezes the remaining time and resuming re-arms the deadline, so
// time spent suspended never counts against the timer.
package timer

import (
	"context"
	"time"

	"github.com/wehubfusion/Talos/pkg/act"
	sdkerrors "github.com/wehubfusion/Talos/pkg/errors"
)

// Timer is a leaf act that returns RUNNING until its duration has elapsed,
// then SUCCESS. A timer never fails.
type Timer struct {
	act.Base
	duration  time.Duration
	deadline  time.Time
	started   bool
	suspended bool
	remaining time.Duration

	now func() time.Time // stubbed in tests
}

// New creates a timer leaf for the given duration.
func New(name string, duration time.Duration) (*Timer, error) {
	if duration <= 0 {
		return nil, sdkerrors.Malformed(name, sdkerrors.NewError(
			sdkerrors.CodeMalformed, "duration must be greater than 0", nil))
	}
	return &Timer{
		Base:     act.NewBase(name),
		duration: duration,
		now:      time.Now,
	}, nil
}

// Tick arms the deadline on the first step and polls it afterwards. It never
// blocks; the caller's tick cadence determines how promptly expiry is
// observed.
func (t *Timer) Tick(ctx context.Context) (act.Status, error) {
	if t.Completed() {
		return act.StatusFail, sdkerrors.Completed(t.Name())
	}
	if !t.started {
		t.deadline = t.now().Add(t.duration)
		t.started = true
		return act.StatusRunning, nil
	}
	if !t.now().Before(t.deadline) {
		return t.Complete(act.StatusSuccess), nil
	}
	return act.StatusRunning, nil
}

// Suspend freezes the time remaining until the deadline.
func (t *Timer) Suspend() {
	if !t.started || t.suspended || t.Completed() {
		return
	}
	t.remaining = t.deadline.Sub(t.now())
	t.suspended = true
}

// Resume re-arms the deadline with the time that remained at Suspend.
// Resuming a timer that was never suspended is a no-op.
func (t *Timer) Resume() {
	if !t.suspended {
		return
	}
	t.deadline = t.now().Add(t.remaining)
	t.suspended = false
}

// Reset disarms the timer so the next tick starts a fresh countdown.
func (t *Timer) Reset() {
	t.started = false
	t.suspended = false
	t.remaining = 0
	t.Base.Reset()
}
