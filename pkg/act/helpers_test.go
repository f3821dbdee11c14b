package act

import (
	"context"
	"errors"
	"fmt"

	sdkerrors "github.com/wehubfusion/Talos/pkg/errors"
)

// recorder collects the order in which leaves are ticked.
type recorder struct {
	order []string
}

// leaf returns a single-shot succeeding leaf that records its label on tick.
func (r *recorder) leaf(label string) *Wrap {
	w, err := NewWrap(label, func(ctx context.Context) error {
		r.order = append(r.order, label)
		return nil
	})
	if err != nil {
		panic(err)
	}
	return w
}

// failing returns a single-shot failing leaf that records its label on tick.
func (r *recorder) failing(label string) *Wrap {
	w, err := NewWrap(label, func(ctx context.Context) error {
		r.order = append(r.order, label)
		return errors.New("intentional failure")
	})
	if err != nil {
		panic(err)
	}
	return w
}

// stepLeaf is a multi-step leaf driven by a scripted status sequence. Once
// the script is exhausted its last status repeats. It also counts suspend and
// resume calls so propagation scoping can be asserted.
type stepLeaf struct {
	Base
	script    []Status
	pos       int
	ticks     int
	suspended int
	resumed   int
}

func newStepLeaf(name string, script ...Status) *stepLeaf {
	if len(script) == 0 {
		panic(fmt.Sprintf("step leaf %q needs a script", name))
	}
	return &stepLeaf{Base: NewBase(name), script: script}
}

func (s *stepLeaf) Tick(ctx context.Context) (Status, error) {
	if s.Completed() {
		return StatusFail, sdkerrors.Completed(s.Name())
	}
	s.ticks++
	status := s.script[s.pos]
	if s.pos < len(s.script)-1 {
		s.pos++
	}
	if status.Terminal() {
		return s.Complete(status), nil
	}
	return status, nil
}

func (s *stepLeaf) Reset() {
	s.pos = 0
	s.ticks = 0
	s.Base.Reset()
}

func (s *stepLeaf) Suspend() { s.suspended++ }

func (s *stepLeaf) Resume() { s.resumed++ }

// tickUntilTerminal drives an act to its terminal status, failing the test
// if it does not settle within the given tick budget.
func tickUntilTerminal(a Act, budget int) (Status, int, error) {
	ctx := context.Background()
	for i := 1; i <= budget; i++ {
		status, err := a.Tick(ctx)
		if err != nil {
			return status, i, err
		}
		if status.Terminal() {
			return status, i, nil
		}
	}
	return StatusRunning, budget, fmt.Errorf("act %q did not settle within %d ticks", a.Name(), budget)
}
