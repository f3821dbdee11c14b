package act

import (
	"context"

	sdkerrors "github.com/wehubfusion/Talos/pkg/errors"
)

// Select is the mirror image of Sequence: it advances past children that
// fail, succeeds as soon as any child succeeds, and fails only once every
// child has failed. Like Sequence it advances at most one child per tick and
// suspend/resume reach the active child only.
type Select struct {
	Base
	active int
}

// NewSelect creates a select over the given children. At least one child is
// required.
func NewSelect(name string, children ...Act) (*Select, error) {
	if err := validateChildren(name, children); err != nil {
		return nil, err
	}
	return &Select{Base: NewBase(name, children...)}, nil
}

// Tick advances the active child by one step.
func (s *Select) Tick(ctx context.Context) (Status, error) {
	if s.Completed() {
		return StatusFail, sdkerrors.Completed(s.Name())
	}

	status, err := s.children[s.active].Tick(ctx)
	if err != nil {
		return StatusFail, err
	}

	switch status {
	case StatusSuccess:
		return s.Complete(StatusSuccess), nil
	case StatusFail:
		s.active++
		if s.active == len(s.children) {
			return s.Complete(StatusFail), nil
		}
	}
	return StatusRunning, nil
}

// Reset rewinds the active index and recursively resets all children.
func (s *Select) Reset() {
	s.active = 0
	s.Base.Reset()
}

// Suspend propagates only to the currently active child.
func (s *Select) Suspend() {
	if !s.Completed() && s.active < len(s.children) {
		s.children[s.active].Suspend()
	}
}

// Resume propagates only to the currently active child.
func (s *Select) Resume() {
	if !s.Completed() && s.active < len(s.children) {
		s.children[s.active].Resume()
	}
}
