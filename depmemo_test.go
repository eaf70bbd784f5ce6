package depmemo_test

import (
	"errors"
	"testing"

	"github.com/mpyw/depmemo"
)

func TestEndToEndTraceInsertLookup(t *testing.T) {
	tree := depmemo.NewTree()

	compute := func(cfg map[string]any) (*depmemo.Imprint, int) {
		view, finalize, err := depmemo.Trace(cfg)
		if err != nil {
			t.Fatalf("Trace: %v", err)
		}
		timeout, _ := view.Get("timeout")
		result := timeout.(int) * 2
		return finalize(), result
	}

	imp, result := compute(map[string]any{"timeout": 5, "ignored": "whatever"})
	tree.Insert(imp, result)

	// A config differing only in a field never read should still hit.
	got, err := tree.Lookup(map[string]any{"timeout": 5, "ignored": "something else entirely"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != 10 {
		t.Errorf("Lookup = %v, want 10", got)
	}

	// A config differing on the field actually read must miss.
	if _, err := tree.Lookup(map[string]any{"timeout": 6}); !errors.Is(err, depmemo.ErrNoMatch) {
		t.Errorf("Lookup(timeout=6) = _, %v, want ErrNoMatch", err)
	}
}

func TestTraceRejectsInvalidRoot(t *testing.T) {
	if _, _, err := depmemo.Trace(nil); !errors.Is(err, depmemo.ErrInvalidTarget) {
		t.Errorf("Trace(nil) = _, %v, want ErrInvalidTarget", err)
	}
}

func TestExplainReportsTheDisagreement(t *testing.T) {
	view, finalize, err := depmemo.Trace(map[string]any{"b": 1})
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	view.Get("b")
	imp := finalize()

	if r := depmemo.Explain(imp, map[string]any{"b": 2}); r == nil {
		t.Error("Explain should report the b mismatch, got nil")
	}
	if r := depmemo.Explain(imp, map[string]any{"b": 1}); r != nil {
		t.Errorf("Explain on a matching object = %v, want nil", r)
	}
}
