package facts

import (
	"context"
	"testing"
	"time"

	"pagesense/internal/config"
)

func TestDisabledLogDegradesGracefully(t *testing.T) {
	l := New(config.MangleConfig{Enable: false})
	if l.Enabled() {
		t.Fatal("expected disabled log")
	}
	l.Record(context.Background(), "navigated", "tab1", "https://example.com")
	if _, err := l.Query(context.Background(), "navigated(T, U)"); err == nil {
		t.Fatal("expected query error on disabled log")
	}
}

func TestMissingSchemaDegradesInsteadOfPanicking(t *testing.T) {
	l := New(config.MangleConfig{Enable: true, SchemaPath: "/nonexistent/schema.mg"})
	if l.Enabled() {
		t.Fatal("expected log to be disabled when schema load fails")
	}
	if _, err := l.AwaitFact(context.Background(), "navigated", 10*time.Millisecond); err == nil {
		t.Fatal("expected error from disabled log")
	}
}
