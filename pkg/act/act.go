// Package act implements the node model of the behavior tree engine: the Act
// contract, the leaf adapter Wrap, and the composite acts (Sequence, Select,
// Parallel, ParallelAll, Loop) together with the decorators IgnoreFail and
// Invert.
//
// Every act is advanced one step at a time by Tick and reports RUNNING,
// SUCCESS, or FAIL. SUCCESS and FAIL terminate the current run; ticking a
// terminated act without an intervening Reset returns a completion-fault
// error, never a status. Execution is single-threaded and cooperative:
// "parallel" acts interleave their children breadth-first across ticks, they
// do not run them concurrently, and a Tick must never block.
//
// Custom leaves embed Base:
//
//	type Sensor struct {
//	    act.Base
//	    port int
//	}
//
//	func (s *Sensor) Tick(ctx context.Context) (act.Status, error) {
//	    if s.Completed() {
//	        return act.StatusFail, errors.Completed(s.Name())
//	    }
//	    // ... read the sensor, then:
//	    return s.Complete(act.StatusSuccess), nil
//	}
package act

import (
	"context"

	sdkerrors "github.com/wehubfusion/Talos/pkg/errors"
)

// Act is a node in a behavior tree. Leaves perform effects; composites derive
// their status from their children's statuses and never reach into a child's
// internal state.
type Act interface {
	// Name returns the display label of the act. It is not used for identity.
	Name() string

	// Children returns the ordered, fixed child list. Order is semantically
	// significant: it defines Sequence/Select precedence and Parallel's
	// intra-round order. The returned slice must not be mutated.
	Children() []Act

	// Tick advances the act by exactly one step and returns the status for
	// that step. Tick must not block. Once it returns StatusSuccess or
	// StatusFail the act is terminated and any further Tick without an
	// intervening Reset returns a completion-fault error.
	Tick(ctx context.Context) (Status, error)

	// Reset restores the act, and recursively all of its children, to its
	// initial not-yet-started state. Reset is idempotent.
	Reset()

	// Suspend notifies the act that it will not be ticked for an
	// indeterminate period, allowing it to release transient resources.
	// Progress state is retained.
	Suspend()

	// Resume is the inverse of Suspend and restores the act to the state it
	// was in immediately before Suspend. Resuming an act that was never
	// suspended is a no-op.
	Resume()
}

// Base carries the name, the fixed child list, and the completion latch shared
// by every act. Embed it in custom leaves; the zero value is not usable, build
// it with NewBase.
type Base struct {
	name     string
	children []Act
	done     bool
	result   Status
}

// NewBase creates the embeddable core of an act.
func NewBase(name string, children ...Act) Base {
	return Base{name: name, children: children}
}

// Name returns the display label of the act.
func (b *Base) Name() string {
	return b.name
}

// Children returns the ordered child list.
func (b *Base) Children() []Act {
	return b.children
}

// Completed reports whether the act has terminated in the current run.
func (b *Base) Completed() bool {
	return b.done
}

// Result returns the terminal status of the current run. It is only
// meaningful once Completed reports true.
func (b *Base) Result() Status {
	return b.result
}

// Complete latches the terminal status for the current run and returns it,
// so Tick implementations can `return b.Complete(status), nil`.
func (b *Base) Complete(status Status) Status {
	b.done = true
	b.result = status
	return status
}

// Reset clears the completion latch and recursively resets all children.
func (b *Base) Reset() {
	b.done = false
	b.result = StatusRunning
	for _, child := range b.children {
		child.Reset()
	}
}

// clear drops the completion latch without touching the children. Composites
// that manage child resets themselves use it to avoid double recursion.
func (b *Base) clear() {
	b.done = false
	b.result = StatusRunning
}

// Suspend is a no-op hook; acts holding transient resources override it.
func (b *Base) Suspend() {}

// Resume is a no-op hook; acts holding transient resources override it.
func (b *Base) Resume() {}

// validateChildren enforces the composite construction contract: at least one
// child, none of them nil.
func validateChildren(name string, children []Act) error {
	if len(children) == 0 {
		return sdkerrors.Malformed(name, sdkerrors.ErrNoChildren)
	}
	for _, child := range children {
		if child == nil {
			return sdkerrors.Malformed(name, sdkerrors.ErrNilChild)
		}
	}
	return nil
}
