// Package tree provides the driver that executes a behavior tree: it holds
// the single reference to the root act and advances it one tick at a time
// until the root terminates, with structured logging, per-tick tracing, and
// protocol-violation reporting.
//
// The driver never blocks. The lazy status sequence of the tree is the caller
// invoking Tick repeatedly: consumption can stop at any point and resume
// later with no side effects beyond what the ticks themselves perform. Run is
// the convenience form that consumes the sequence until the first terminal
// status, checking context cancellation between ticks.
package tree

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/wehubfusion/Talos/pkg/act"
	sdkerrors "github.com/wehubfusion/Talos/pkg/errors"
	"github.com/wehubfusion/Talos/pkg/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Tree owns a root act and drives it to completion.
// Nothing else may hold a reference to the root while the tree runs; the
// shape of the tree is fixed at construction and children are never added or
// removed afterwards.
type Tree struct {
	root            act.Act
	logger          *zap.Logger
	tracer          trace.Tracer
	tracingShutdown func(context.Context) error
	runID           string
	ticks           int
	done            bool
	result          act.Status
	suspended       bool
}

// New creates a driver for the given root act.
// The logger is required; tests typically pass zap.NewNop().
// tracingConfig is optional - if nil, no tracing will be set up. If provided,
// tracing is configured at construction and torn down by Close.
func New(root act.Act, logger *zap.Logger, tracingConfig *tracing.Config) (*Tree, error) {
	if root == nil {
		return nil, sdkerrors.ErrNilRoot
	}
	if logger == nil {
		return nil, sdkerrors.NewError(sdkerrors.CodeMalformed, "logger cannot be nil", nil)
	}

	t := &Tree{
		root:   root,
		logger: logger,
		tracer: otel.Tracer("talos/tree"),
		runID:  uuid.NewString(),
	}

	if tracingConfig != nil {
		shutdown, err := tracing.Setup(context.Background(), *tracingConfig, logger)
		if err != nil {
			logger.Warn("Failed to setup tracing, continuing without tracing", zap.Error(err))
		} else {
			t.tracingShutdown = shutdown
			logger.Info("Tracing setup complete",
				zap.String("service", tracingConfig.ServiceName),
				zap.String("endpoint", tracingConfig.OTLPEndpoint))
		}
	}

	return t, nil
}

// Root returns the root act. The returned act must only be inspected
// (name/children), never ticked directly while the tree owns it.
func (t *Tree) Root() act.Act {
	return t.root
}

// RunID returns the correlation ID of the current run. A fresh ID is
// assigned at construction and by every Reset.
func (t *Tree) RunID() string {
	return t.runID
}

// Ticks returns the number of ticks performed in the current run.
func (t *Tree) Ticks() int {
	return t.ticks
}

// Tick advances the root by exactly one step and returns its status.
// Protocol violations (ticking past termination, malformed acts discovered at
// first tick) are returned as errors, reported to Sentry when a Sentry client
// is configured, and are never conflated with the FAIL status.
func (t *Tree) Tick(ctx context.Context) (act.Status, error) {
	ctx, span := t.tracer.Start(ctx, "tree.Tick",
		trace.WithAttributes(
			attribute.String("run.id", t.runID),
			attribute.Int("tick", t.ticks+1),
			attribute.String("root", t.root.Name()),
		))
	defer span.End()

	status, err := t.root.Tick(ctx)
	t.ticks++

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.logger.Error("Protocol violation while ticking tree",
			zap.String("runID", t.runID),
			zap.Int("tick", t.ticks),
			zap.Error(err))
		sentry.CaptureException(err) // no-op unless sentry.Init was called
		return status, err
	}

	span.SetAttributes(attribute.String("status", status.String()))
	span.SetStatus(codes.Ok, status.String())

	if status.Terminal() {
		t.done = true
		t.result = status
		t.logger.Info("Tree terminated",
			zap.String("runID", t.runID),
			zap.Int("ticks", t.ticks),
			zap.String("status", status.String()))
	} else {
		t.logger.Debug("Tree ticked",
			zap.String("runID", t.runID),
			zap.Int("tick", t.ticks),
			zap.String("status", status.String()))
	}

	return status, nil
}

// Run consumes the status sequence until the root terminates, checking for
// context cancellation between ticks. Each tick is synchronous and prompt, so
// cancellation takes effect at the next tick boundary. A cancelled Run leaves
// all progress intact; calling Run again resumes from the same internal
// state.
func (t *Tree) Run(ctx context.Context) (act.Status, error) {
	if t.done {
		return t.result, sdkerrors.Completed(t.root.Name())
	}

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Run stopped due to context cancellation",
				zap.String("runID", t.runID),
				zap.Int("ticks", t.ticks))
			return act.StatusRunning, ctx.Err()
		default:
		}

		status, err := t.Tick(ctx)
		if err != nil {
			return status, err
		}
		if status.Terminal() {
			return status, nil
		}
	}
}

// Done reports whether the current run has terminated.
func (t *Tree) Done() bool {
	return t.done
}

// Result returns the terminal status of the current run. It is only
// meaningful once Done reports true.
func (t *Tree) Result() act.Status {
	return t.result
}

// Reset returns the whole tree to its initial state so the same tree object
// can be re-run, and assigns a fresh run ID. Reset is idempotent.
func (t *Tree) Reset() {
	t.root.Reset()
	t.done = false
	t.result = act.StatusRunning
	t.ticks = 0
	t.suspended = false
	t.runID = uuid.NewString()
	t.logger.Info("Tree reset", zap.String("runID", t.runID))
}

// Suspend notifies the tree that it will not be ticked for an indeterminate
// period. Progress is retained; discarding progress is Reset's job. Suspend
// is idempotent.
func (t *Tree) Suspend() {
	if t.suspended || t.done {
		return
	}
	t.root.Suspend()
	t.suspended = true
	t.logger.Info("Tree suspended",
		zap.String("runID", t.runID),
		zap.Int("ticks", t.ticks))
}

// Resume restores the tree to the state it was in immediately before
// Suspend. Resuming a tree that was never suspended is a no-op.
func (t *Tree) Resume() {
	if !t.suspended {
		return
	}
	t.root.Resume()
	t.suspended = false
	t.logger.Info("Tree resumed",
		zap.String("runID", t.runID),
		zap.Int("ticks", t.ticks))
}

// Close gracefully shuts down the tree's resources including tracing.
// This should be called when the tree is no longer needed.
func (t *Tree) Close() error {
	if t.tracingShutdown != nil {
		return tracing.Shutdown(t.tracingShutdown, t.logger)
	}
	return nil
}
