package act

import (
	"context"

	sdkerrors "github.com/wehubfusion/Talos/pkg/errors"
)

// Sequence drives its children one at a time, left to right, and succeeds
// only once every child has succeeded. A failing child fails the sequence
// immediately and later siblings are never ticked.
//
// A sequence advances at most one child per tick: when the active child
// succeeds, the sequence returns RUNNING and the next child is ticked on the
// following tick. One tick is one unit of scheduling fairness; advancing
// several children within a single tick would break the deterministic
// interleaving produced by Parallel.
type Sequence struct {
	Base
	active int
}

// NewSequence creates a sequence over the given children. At least one child
// is required.
func NewSequence(name string, children ...Act) (*Sequence, error) {
	if err := validateChildren(name, children); err != nil {
		return nil, err
	}
	return &Sequence{Base: NewBase(name, children...)}, nil
}

// Tick advances the active child by one step.
func (s *Sequence) Tick(ctx context.Context) (Status, error) {
	if s.Completed() {
		return StatusFail, sdkerrors.Completed(s.Name())
	}

	status, err := s.children[s.active].Tick(ctx)
	if err != nil {
		return StatusFail, err
	}

	switch status {
	case StatusFail:
		return s.Complete(StatusFail), nil
	case StatusSuccess:
		s.active++
		if s.active == len(s.children) {
			return s.Complete(StatusSuccess), nil
		}
	}
	return StatusRunning, nil
}

// Reset rewinds the active index and recursively resets all children.
func (s *Sequence) Reset() {
	s.active = 0
	s.Base.Reset()
}

// Suspend propagates only to the currently active child. Siblings that have
// not been reached, or that already completed, are untouched.
func (s *Sequence) Suspend() {
	if !s.Completed() && s.active < len(s.children) {
		s.children[s.active].Suspend()
	}
}

// Resume propagates only to the currently active child.
func (s *Sequence) Resume() {
	if !s.Completed() && s.active < len(s.children) {
		s.children[s.active].Resume()
	}
}
