// Package jsleaf provides a leaf act whose computation is a JavaScript
// expression evaluated on an embedded goja runtime. The script's final value
// decides the status: truthy means SUCCESS, falsy or a thrown exception means
// FAIL. Scripts are compiled once at construction, so malformed code is
// rejected before the tree ever runs.
package jsleaf

import (
	"context"
	"fmt"

	"github.com/dop251/goja"

	"github.com/wehubfusion/Talos/pkg/act"
	sdkerrors "github.com/wehubfusion/Talos/pkg/errors"
)

// Leaf evaluates a compiled JavaScript program once per run. Trees execute
// single-threaded, so the leaf owns one VM rather than a pool.
type Leaf struct {
	act.Base
	program *goja.Program
	globals map[string]interface{}
	vm      *goja.Runtime

	lastValue goja.Value
	lastErr   error
}

// New compiles src and returns a leaf that evaluates it. The globals map is
// installed on the runtime before every evaluation, so scripts can reference
// the given names directly.
func New(name, src string, globals map[string]interface{}) (*Leaf, error) {
	if src == "" {
		return nil, sdkerrors.Malformed(name, sdkerrors.NewError(
			sdkerrors.CodeMalformed, "script source cannot be empty", nil))
	}
	program, err := goja.Compile(name, src, true)
	if err != nil {
		return nil, sdkerrors.Malformed(name, err)
	}
	return &Leaf{
		Base:    act.NewBase(name),
		program: program,
		globals: globals,
		vm:      goja.New(),
	}, nil
}

// Tick evaluates the program and settles the leaf on the spot. A thrown
// exception or a falsy final value yields FAIL; any other value yields
// SUCCESS.
func (l *Leaf) Tick(ctx context.Context) (act.Status, error) {
	if l.Completed() {
		return act.StatusFail, sdkerrors.Completed(l.Name())
	}

	value, err := l.run()
	l.lastValue = value
	l.lastErr = err
	if err != nil {
		return l.Complete(act.StatusFail), nil
	}
	if !value.ToBoolean() {
		return l.Complete(act.StatusFail), nil
	}
	return l.Complete(act.StatusSuccess), nil
}

func (l *Leaf) run() (value goja.Value, err error) {
	// goja surfaces some runtime faults as panics.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script panic: %v", r)
		}
	}()

	for name, val := range l.globals {
		if setErr := l.vm.Set(name, val); setErr != nil {
			return nil, fmt.Errorf("failed to set global %q: %w", name, setErr)
		}
	}
	return l.vm.RunProgram(l.program)
}

// Value returns the script's final value from the most recent evaluation, or
// nil if the leaf has not run since its last reset.
func (l *Leaf) Value() goja.Value {
	return l.lastValue
}

// Err returns the script error from the most recent evaluation, if any.
func (l *Leaf) Err() error {
	return l.lastErr
}

// Reset discards the previous evaluation result. Globals installed by earlier
// runs remain on the runtime; the compiled program is reused.
func (l *Leaf) Reset() {
	l.lastValue = nil
	l.lastErr = nil
	l.Base.Reset()
}
