// Package facts adapts the embedded deductive engine into the supplemental,
// additive fact log described by the agent-protocol's query_facts/await_fact
// tools. It is optional: a disabled or schema-less engine degrades to a
// no-op log rather than failing snapshot/interaction tools.
package facts

import (
	"context"
	"fmt"
	"time"

	"pagesense/internal/config"
	"pagesense/internal/mangle"
)

// Log is a thin façade over *mangle.Engine scoped to the handful of
// predicates the session manager emits and the two tools that read them back.
type Log struct {
	engine  *mangle.Engine
	enabled bool
}

// New constructs the fact log. A failure to load the configured schema is
// non-fatal: the log degrades to disabled rather than blocking startup,
// since the fact log is explicitly additive.
func New(cfg config.MangleConfig) *Log {
	if !cfg.Enable {
		return &Log{enabled: false}
	}
	engine, err := mangle.NewEngine(cfg)
	if err != nil {
		return &Log{enabled: false}
	}
	if !cfg.DisableBuiltin {
		if err := engine.LoadMacros(); err != nil {
			return &Log{enabled: false}
		}
	}
	return &Log{engine: engine, enabled: true}
}

// Enabled reports whether the underlying engine loaded successfully.
func (l *Log) Enabled() bool {
	return l.enabled
}

// Record appends one fact, identified by predicate name and positional args.
func (l *Log) Record(ctx context.Context, predicate string, args ...interface{}) {
	if !l.enabled {
		return
	}
	_ = l.engine.AddFacts(ctx, []mangle.Fact{{Predicate: predicate, Args: args, Timestamp: time.Now()}})
}

// Query runs a read-only query against the fact log (query_facts tool).
func (l *Log) Query(ctx context.Context, queryStr string) ([]mangle.QueryResult, error) {
	if !l.enabled {
		return nil, fmt.Errorf("fact log disabled")
	}
	return l.engine.Query(ctx, queryStr)
}

// AwaitFact polls for at least one fact matching predicate, up to timeout,
// returning the matches found (await_fact tool). It is a pure read: it never
// mutates the log and it honors ctx cancellation.
func (l *Log) AwaitFact(ctx context.Context, predicate string, timeout time.Duration) ([]mangle.Fact, error) {
	if !l.enabled {
		return nil, fmt.Errorf("fact log disabled")
	}
	deadline := time.Now().Add(timeout)
	for {
		facts := l.engine.FactsByPredicate(predicate)
		if len(facts) > 0 {
			return facts, nil
		}
		if time.Now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
