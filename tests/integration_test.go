package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/wehubfusion/Talos/pkg/act"
	"github.com/wehubfusion/Talos/pkg/schema"
	"github.com/wehubfusion/Talos/pkg/tree"
)

// journal records leaf executions across a whole tree run.
type journal struct {
	entries []string
}

func (j *journal) leafFactory(t *testing.T) schema.LeafFactory {
	t.Helper()
	return func(name string, config json.RawMessage) (act.Act, error) {
		var cfg struct {
			Fail bool `json:"fail"`
		}
		if len(config) > 0 {
			if err := json.Unmarshal(config, &cfg); err != nil {
				return nil, err
			}
		}
		return act.NewWrap(name, func(ctx context.Context) error {
			j.entries = append(j.entries, name)
			if cfg.Fail {
				return fmt.Errorf("leaf %s failed", name)
			}
			return nil
		})
	}
}

func newRegistry(t *testing.T, j *journal) *schema.Registry {
	t.Helper()
	registry := schema.NewRegistry()
	if err := registry.Register("step", j.leafFactory(t)); err != nil {
		t.Fatalf("failed to register factory: %v", err)
	}
	return registry
}

const patrolDocument = `{
	"kind": "select",
	"name": "patrol",
	"children": [
		{"kind": "sequence", "name": "preferred", "children": [
			{"kind": "leaf", "ref": "step", "name": "gate", "config": {"fail": true}},
			{"kind": "leaf", "ref": "step", "name": "through gate"}
		]},
		{"kind": "sequence", "name": "fallback", "children": [
			{"kind": "loop", "name": "circle", "iterations": 2, "children": [
				{"kind": "leaf", "ref": "step", "name": "lap"}
			]},
			{"kind": "invert", "children": [
				{"kind": "leaf", "ref": "step", "name": "blocked", "config": {"fail": true}}
			]}
		]}
	]
}`

func buildPatrol(t *testing.T) (act.Act, *journal) {
	t.Helper()
	j := &journal{}
	root, err := schema.NewBuilder(newRegistry(t, j)).BuildFromJSON([]byte(patrolDocument))
	if err != nil {
		t.Fatalf("failed to build tree: %v", err)
	}
	return root, j
}

func TestDefinitionDrivenTreeRun(t *testing.T) {
	root, j := buildPatrol(t)

	tr, err := tree.New(root, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	defer tr.Close()

	status, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if status != act.StatusSuccess {
		t.Fatalf("expected SUCCESS, got %s", status)
	}

	// Preferred route fails at the gate, fallback circles twice and the
	// inverted blocked check turns its failure into success.
	want := []string{"gate", "lap", "lap", "blocked"}
	if len(j.entries) != len(want) {
		t.Fatalf("expected %v, got %v", want, j.entries)
	}
	for i, name := range want {
		if j.entries[i] != name {
			t.Fatalf("entry %d: expected %q, got %q (full: %v)", i, name, j.entries[i], j.entries)
		}
	}
}

func TestSuspendResumeMidRun(t *testing.T) {
	root, j := buildPatrol(t)

	tr, err := tree.New(root, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	defer tr.Close()

	ctx := context.Background()

	// Advance partway, then suspend and resume. Progress must be retained.
	for i := 0; i < 2; i++ {
		if _, err := tr.Tick(ctx); err != nil {
			t.Fatalf("tick %d failed: %v", i, err)
		}
	}
	entriesBefore := len(j.entries)

	tr.Suspend()
	tr.Resume()

	status, err := tr.Run(ctx)
	if err != nil {
		t.Fatalf("run after resume failed: %v", err)
	}
	if status != act.StatusSuccess {
		t.Fatalf("expected SUCCESS, got %s", status)
	}
	if len(j.entries) <= entriesBefore {
		t.Fatal("expected the run to make progress after resume")
	}
	if total := len(j.entries); total != 4 {
		t.Fatalf("expected 4 leaf executions in total, got %d (%v)", total, j.entries)
	}
}

func TestResetReproducesRun(t *testing.T) {
	root, j := buildPatrol(t)

	tr, err := tree.New(root, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	defer tr.Close()

	ctx := context.Background()
	if _, err := tr.Run(ctx); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	firstRunID := tr.RunID()
	firstEntries := len(j.entries)

	// A terminated tree faults on further ticking until reset.
	if _, err := tr.Tick(ctx); err == nil {
		t.Fatal("expected a fault when ticking a finished tree")
	}

	tr.Reset()
	if tr.RunID() == firstRunID {
		t.Fatal("expected a fresh run ID after reset")
	}

	status, err := tr.Run(ctx)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if status != act.StatusSuccess {
		t.Fatalf("expected SUCCESS, got %s", status)
	}
	if len(j.entries) != 2*firstEntries {
		t.Fatalf("expected the second run to replay %d executions, got %d total", firstEntries, len(j.entries))
	}
}
