package act

import (
	"context"

	sdkerrors "github.com/wehubfusion/Talos/pkg/errors"
)

// IgnoreFail passes its child's RUNNING and SUCCESS through and maps FAIL to
// SUCCESS, so the decorated subtree can never fail its parent.
type IgnoreFail struct {
	Base
}

// NewIgnoreFail creates an IgnoreFail decorator around the given child.
func NewIgnoreFail(name string, child Act) (*IgnoreFail, error) {
	if child == nil {
		return nil, sdkerrors.Malformed(name, sdkerrors.ErrNilChild)
	}
	return &IgnoreFail{Base: NewBase(name, child)}, nil
}

// Tick advances the child by one step, absorbing failure.
func (d *IgnoreFail) Tick(ctx context.Context) (Status, error) {
	if d.Completed() {
		return StatusFail, sdkerrors.Completed(d.Name())
	}
	status, err := d.children[0].Tick(ctx)
	if err != nil {
		return StatusFail, err
	}
	if status.Terminal() {
		return d.Complete(StatusSuccess), nil
	}
	return StatusRunning, nil
}

// Suspend propagates to the child while it is live.
func (d *IgnoreFail) Suspend() {
	if !d.Completed() {
		d.children[0].Suspend()
	}
}

// Resume propagates to the child while it is live.
func (d *IgnoreFail) Resume() {
	if !d.Completed() {
		d.children[0].Resume()
	}
}

// Invert swaps its child's terminal statuses: SUCCESS becomes FAIL and FAIL
// becomes SUCCESS. RUNNING passes through.
type Invert struct {
	Base
}

// NewInvert creates an Invert decorator around the given child.
func NewInvert(name string, child Act) (*Invert, error) {
	if child == nil {
		return nil, sdkerrors.Malformed(name, sdkerrors.ErrNilChild)
	}
	return &Invert{Base: NewBase(name, child)}, nil
}

// Tick advances the child by one step, inverting its terminal status.
func (d *Invert) Tick(ctx context.Context) (Status, error) {
	if d.Completed() {
		return StatusFail, sdkerrors.Completed(d.Name())
	}
	status, err := d.children[0].Tick(ctx)
	if err != nil {
		return StatusFail, err
	}
	switch status {
	case StatusSuccess:
		return d.Complete(StatusFail), nil
	case StatusFail:
		return d.Complete(StatusSuccess), nil
	}
	return StatusRunning, nil
}

// Suspend propagates to the child while it is live.
func (d *Invert) Suspend() {
	if !d.Completed() {
		d.children[0].Suspend()
	}
}

// Resume propagates to the child while it is live.
func (d *Invert) Resume() {
	if !d.Completed() {
		d.children[0].Resume()
	}
}
