package act

import (
	"context"

	sdkerrors "github.com/wehubfusion/Talos/pkg/errors"
)

// Loop re-runs its children, as an inner sequence, for a bounded or unbounded
// number of iterations. Each iteration is one full pass of the inner
// sequence; the pass must succeed for the loop to continue, and any failure
// fails the loop immediately. A bounded loop succeeds on the tick its final
// pass completes, after exactly `iterations` completions.
type Loop struct {
	Base
	inner      *Sequence
	iterations int // 0 means unbounded
	completed  int
}

// NewLoop creates a loop that runs its children `iterations` times. The
// bound must be positive; a loop that should never terminate on its own is
// built with NewForever instead.
func NewLoop(name string, iterations int, children ...Act) (*Loop, error) {
	if iterations <= 0 {
		return nil, sdkerrors.Malformed(name, sdkerrors.ErrInvalidIterations)
	}
	return newLoop(name, iterations, children)
}

// NewForever creates a loop that restarts its children indefinitely, only
// terminating if a pass fails.
func NewForever(name string, children ...Act) (*Loop, error) {
	return newLoop(name, 0, children)
}

func newLoop(name string, iterations int, children []Act) (*Loop, error) {
	// The pass sequence carries a derived name so faults surfacing from it
	// are attributable to the inner pass rather than the loop itself.
	inner, err := NewSequence(name+"/sequence", children...)
	if err != nil {
		return nil, err
	}
	return &Loop{
		Base:       NewBase(name, children...),
		inner:      inner,
		iterations: iterations,
	}, nil
}

// Iterations returns the configured bound, or 0 for an unbounded loop.
func (l *Loop) Iterations() int {
	return l.iterations
}

// Tick delegates one step to the inner sequence and restarts it on each
// completed pass until the bound is reached.
func (l *Loop) Tick(ctx context.Context) (Status, error) {
	if l.Completed() {
		return StatusFail, sdkerrors.Completed(l.Name())
	}

	status, err := l.inner.Tick(ctx)
	if err != nil {
		return StatusFail, err
	}

	switch status {
	case StatusFail:
		return l.Complete(StatusFail), nil
	case StatusSuccess:
		l.completed++
		if l.iterations > 0 && l.completed == l.iterations {
			return l.Complete(StatusSuccess), nil
		}
		// The next tick resumes a fresh pass; only the inner sequence is
		// rewound, never the loop's own counter.
		l.inner.Reset()
	}
	return StatusRunning, nil
}

// Reset rewinds the iteration counter and the inner sequence. The children
// are reset through the inner sequence, so the base latch is cleared without
// recursing a second time.
func (l *Loop) Reset() {
	l.completed = 0
	l.inner.Reset()
	l.clear()
}

// Suspend propagates through the inner sequence to the currently active child.
func (l *Loop) Suspend() {
	if !l.Completed() {
		l.inner.Suspend()
	}
}

// Resume propagates through the inner sequence to the currently active child.
func (l *Loop) Resume() {
	if !l.Completed() {
		l.inner.Resume()
	}
}
