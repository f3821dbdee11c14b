package jsleaf

import (
	"context"
	"testing"

	"github.com/wehubfusion/Talos/pkg/act"
	sdkerrors "github.com/wehubfusion/Talos/pkg/errors"
)

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New("leaf", "", nil); err == nil {
		t.Fatal("expected error for empty source")
	}
	if _, err := New("leaf", "function {", nil); err == nil {
		t.Fatal("expected error for syntactically invalid source")
	}
}

func TestTruthyResultSucceeds(t *testing.T) {
	leaf, err := New("leaf", "1 + 1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status, err := leaf.Tick(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != act.StatusSuccess {
		t.Fatalf("expected SUCCESS, got %s", status)
	}
	if got := leaf.Value().ToInteger(); got != 2 {
		t.Fatalf("expected final value 2, got %d", got)
	}
}

func TestFalsyResultFails(t *testing.T) {
	for _, src := range []string{"0", "''", "false", "null"} {
		leaf, err := New("leaf", src, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		status, err := leaf.Tick(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status != act.StatusFail {
			t.Fatalf("source %q: expected FAIL, got %s", src, status)
		}
	}
}

func TestThrownExceptionFails(t *testing.T) {
	leaf, err := New("leaf", `throw new Error("boom")`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status, err := leaf.Tick(context.Background())
	if err != nil {
		t.Fatalf("exceptions settle the leaf, they are not tick errors: %v", err)
	}
	if status != act.StatusFail {
		t.Fatalf("expected FAIL, got %s", status)
	}
	if leaf.Err() == nil {
		t.Fatal("expected the script error to be retained")
	}
}

func TestGlobalsAreVisibleToScripts(t *testing.T) {
	leaf, err := New("leaf", "threshold < reading", map[string]interface{}{
		"threshold": 10,
		"reading":   42,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status, err := leaf.Tick(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != act.StatusSuccess {
		t.Fatalf("expected SUCCESS, got %s", status)
	}
}

func TestCompletionFaultAndReset(t *testing.T) {
	leaf, err := New("leaf", "true", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	if _, err := leaf.Tick(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := leaf.Tick(ctx); !sdkerrors.IsCompleted(err) {
		t.Fatalf("expected completion fault, got %v", err)
	}

	leaf.Reset()
	if leaf.Value() != nil {
		t.Fatal("reset must discard the previous evaluation result")
	}
	status, err := leaf.Tick(ctx)
	if err != nil {
		t.Fatalf("unexpected error after reset: %v", err)
	}
	if status != act.StatusSuccess {
		t.Fatalf("expected SUCCESS after reset, got %s", status)
	}
}
