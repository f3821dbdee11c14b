package act

import (
	"context"

	sdkerrors "github.com/wehubfusion/Talos/pkg/errors"
)

// Computation is a single-shot unit of work adapted into a leaf act by Wrap.
// It returns synchronously: nil means SUCCESS and a non-nil error means FAIL.
// A computation is never RUNNING; model multi-step leaves as custom acts
// embedding Base instead.
type Computation func(ctx context.Context) error

// Wrap adapts a Computation to the Act contract. The computation is invoked
// exactly once per reset cycle; a second Tick before Reset is a completion
// fault.
type Wrap struct {
	Base
	fn      Computation
	lastErr error
}

// NewWrap creates a leaf act around the given computation.
func NewWrap(name string, fn Computation) (*Wrap, error) {
	if fn == nil {
		return nil, sdkerrors.Malformed(name, sdkerrors.ErrNilComputation)
	}
	return &Wrap{Base: NewBase(name), fn: fn}, nil
}

// Tick runs the computation and maps its outcome onto a terminal status.
// The computation's error, if any, is retained and readable via Err; it is a
// normal FAIL outcome, not a protocol violation, so it is never returned from
// Tick.
func (w *Wrap) Tick(ctx context.Context) (Status, error) {
	if w.Completed() {
		return StatusFail, sdkerrors.Completed(w.Name())
	}
	if err := w.fn(ctx); err != nil {
		w.lastErr = err
		return w.Complete(StatusFail), nil
	}
	return w.Complete(StatusSuccess), nil
}

// Err returns the error produced by the computation in the current run, or
// nil if it succeeded or has not run yet.
func (w *Wrap) Err() error {
	return w.lastErr
}

// Reset clears the completion latch and the retained computation error.
func (w *Wrap) Reset() {
	w.lastErr = nil
	w.Base.Reset()
}
