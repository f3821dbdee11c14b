package act

import (
	"context"

	sdkerrors "github.com/wehubfusion/Talos/pkg/errors"
)

// Parallel ticks all of its live children on every tick, not just one.
//
// Each tick is one round: children are visited in construction order and
// every child that has not yet terminated is ticked exactly once. The exit
// rule is evaluated after the round completes, so siblings later in the
// order still receive their tick for the round in which an earlier sibling
// settles. A child that has returned SUCCESS terminates the Parallel with
// SUCCESS at the end of the round; FAIL requires every child to have failed.
// Both outcomes are latched per child, so they survive a round aborted by a
// propagated fault. Terminated children are skipped on subsequent rounds and
// never contribute further statuses.
//
// "Parallel" is an ordering discipline, not concurrency: children of
// parallels nested under a shared ancestor make progress in lockstep, one
// step per outer tick, left to right, which is what produces the documented
// breadth-first interleavings.
type Parallel struct {
	Base
	settled   []bool
	failed    int
	succeeded bool
}

// NewParallel creates a parallel over the given children. At least one child
// is required.
func NewParallel(name string, children ...Act) (*Parallel, error) {
	if err := validateChildren(name, children); err != nil {
		return nil, err
	}
	return &Parallel{
		Base:    NewBase(name, children...),
		settled: make([]bool, len(children)),
	}, nil
}

// Tick runs one breadth-first round over the live children.
func (p *Parallel) Tick(ctx context.Context) (Status, error) {
	if p.Completed() {
		return StatusFail, sdkerrors.Completed(p.Name())
	}

	for i, child := range p.children {
		if p.settled[i] {
			continue
		}
		status, err := child.Tick(ctx)
		if err != nil {
			// Settled statuses stay latched so a later round can still
			// evaluate the exit rule after the fault is dealt with.
			return StatusFail, err
		}
		switch status {
		case StatusSuccess:
			p.settled[i] = true
			p.succeeded = true
		case StatusFail:
			p.settled[i] = true
			p.failed++
		}
	}

	if p.succeeded {
		return p.Complete(StatusSuccess), nil
	}
	if p.failed == len(p.children) {
		return p.Complete(StatusFail), nil
	}
	return StatusRunning, nil
}

// Reset clears the per-child bookkeeping and recursively resets all children.
func (p *Parallel) Reset() {
	for i := range p.settled {
		p.settled[i] = false
	}
	p.failed = 0
	p.succeeded = false
	p.Base.Reset()
}

// Suspend propagates to every non-terminated child.
func (p *Parallel) Suspend() {
	if p.Completed() {
		return
	}
	for i, child := range p.children {
		if !p.settled[i] {
			child.Suspend()
		}
	}
}

// Resume propagates to every non-terminated child.
func (p *Parallel) Resume() {
	if p.Completed() {
		return
	}
	for i, child := range p.children {
		if !p.settled[i] {
			child.Resume()
		}
	}
}

// ParallelAll is the all-must-succeed variant of Parallel. It shares the
// breadth-first round discipline but inverts the exit rule: a child failing
// terminates the ParallelAll with FAIL at the end of that round, and SUCCESS
// requires every child to have succeeded. It is a distinct type rather than
// a mode switch on Parallel so the two contracts cannot be confused.
type ParallelAll struct {
	Base
	settled   []bool
	succeeded int
	failed    bool
}

// NewParallelAll creates an all-must-succeed parallel over the given
// children. At least one child is required.
func NewParallelAll(name string, children ...Act) (*ParallelAll, error) {
	if err := validateChildren(name, children); err != nil {
		return nil, err
	}
	return &ParallelAll{
		Base:    NewBase(name, children...),
		settled: make([]bool, len(children)),
	}, nil
}

// Tick runs one breadth-first round over the live children.
func (p *ParallelAll) Tick(ctx context.Context) (Status, error) {
	if p.Completed() {
		return StatusFail, sdkerrors.Completed(p.Name())
	}

	for i, child := range p.children {
		if p.settled[i] {
			continue
		}
		status, err := child.Tick(ctx)
		if err != nil {
			return StatusFail, err
		}
		switch status {
		case StatusSuccess:
			p.settled[i] = true
			p.succeeded++
		case StatusFail:
			p.settled[i] = true
			p.failed = true
		}
	}

	if p.failed {
		return p.Complete(StatusFail), nil
	}
	if p.succeeded == len(p.children) {
		return p.Complete(StatusSuccess), nil
	}
	return StatusRunning, nil
}

// Reset clears the per-child bookkeeping and recursively resets all children.
func (p *ParallelAll) Reset() {
	for i := range p.settled {
		p.settled[i] = false
	}
	p.succeeded = 0
	p.failed = false
	p.Base.Reset()
}

// Suspend propagates to every non-terminated child.
func (p *ParallelAll) Suspend() {
	if p.Completed() {
		return
	}
	for i, child := range p.children {
		if !p.settled[i] {
			child.Suspend()
		}
	}
}

// Resume propagates to every non-terminated child.
func (p *ParallelAll) Resume() {
	if p.Completed() {
		return
	}
	for i, child := range p.children {
		if !p.settled[i] {
			child.Resume()
		}
	}
}
