package mangle

import (
	"context"
	"testing"
	"time"

	"pagesense/internal/config"
)

func newMacroEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.MangleConfig{
		Enable:          true,
		SchemaPath:      factsSchema,
		FactBufferLimit: 1000,
	}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if err := e.LoadMacros(); err != nil {
		t.Fatalf("LoadMacros failed: %v", err)
	}
	return e
}

func TestMacros(t *testing.T) {
	ctx := context.Background()

	t.Run("Macro: repeated_interaction", func(t *testing.T) {
		e := newMacroEngine(t)
		facts := []Fact{
			{Predicate: "interacted", Args: []interface{}{"tab-1", "click", uint32(7), int64(1000)}, Timestamp: time.Now()},
			{Predicate: "interacted", Args: []interface{}{"tab-1", "click", uint32(7), int64(2000)}, Timestamp: time.Now()},
			{Predicate: "interacted", Args: []interface{}{"tab-1", "click", uint32(9), int64(1500)}, Timestamp: time.Now()},
		}
		if err := e.AddFacts(ctx, facts); err != nil {
			t.Fatal(err)
		}

		results, err := e.Evaluate(ctx, "repeated_interaction")
		if err != nil {
			t.Fatal(err)
		}
		if len(results) == 0 {
			t.Error("expected ref 7 (clicked twice) to derive repeated_interaction")
		}
	})

	t.Run("Macro: revisited_url", func(t *testing.T) {
		e := newMacroEngine(t)
		facts := []Fact{
			{Predicate: "navigated", Args: []interface{}{"tab-2", "https://example.com/cart", int64(1000)}, Timestamp: time.Now()},
			{Predicate: "navigated", Args: []interface{}{"tab-2", "https://example.com/product", int64(1500)}, Timestamp: time.Now()},
			{Predicate: "navigated", Args: []interface{}{"tab-2", "https://example.com/cart", int64(2000)}, Timestamp: time.Now()},
		}
		if err := e.AddFacts(ctx, facts); err != nil {
			t.Fatal(err)
		}

		results, err := e.Evaluate(ctx, "revisited_url")
		if err != nil {
			t.Fatal(err)
		}
		if len(results) == 0 {
			t.Error("expected /cart (visited twice) to derive revisited_url")
		}
	})

	t.Run("Macro: churned_snapshot", func(t *testing.T) {
		e := newMacroEngine(t)
		facts := []Fact{
			{Predicate: "snapshot_taken", Args: []interface{}{"tab-3", "dh-aaa", 10, int64(1000)}, Timestamp: time.Now()},
			{Predicate: "snapshot_taken", Args: []interface{}{"tab-3", "dh-bbb", 12, int64(2000)}, Timestamp: time.Now()},
		}
		if err := e.AddFacts(ctx, facts); err != nil {
			t.Fatal(err)
		}

		results, err := e.Evaluate(ctx, "churned_snapshot")
		if err != nil {
			t.Fatal(err)
		}
		if len(results) == 0 {
			t.Error("expected differing DOM hashes to derive churned_snapshot")
		}
	})

	t.Run("Macro: no false positive on single event", func(t *testing.T) {
		e := newMacroEngine(t)
		facts := []Fact{
			{Predicate: "interacted", Args: []interface{}{"tab-4", "click", uint32(1), int64(1000)}, Timestamp: time.Now()},
		}
		if err := e.AddFacts(ctx, facts); err != nil {
			t.Fatal(err)
		}

		results, err := e.Evaluate(ctx, "repeated_interaction")
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != 0 {
			t.Errorf("expected no repeated_interaction from a single event, got %d", len(results))
		}
	})
}

func TestLoadMacrosDisabledEngineIsNoOp(t *testing.T) {
	cfg := config.MangleConfig{Enable: false}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if err := e.LoadMacros(); err != nil {
		t.Errorf("LoadMacros on disabled engine should be a no-op, got error: %v", err)
	}
}
