// Package mutation detects when a live page's DOM has meaningfully changed,
// so a cached snapshot can be reused when it hasn't.
package mutation

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Evaluator is the narrow driver capability the tracker needs: run a script
// against the page and get back its JSON/string result.
type Evaluator interface {
	EvaluateScript(ctx context.Context, script string) (string, error)
}

// observeScript increments window.__pagesense_mutations on every DOM mutation.
const observeScript = `(() => {
  if (window.__pagesense_mutations !== undefined) return window.__pagesense_mutations;
  window.__pagesense_mutations = 0;
  const observer = new MutationObserver(() => { window.__pagesense_mutations++; });
  observer.observe(document.documentElement, { childList: true, subtree: true, attributes: true, characterData: true });
  window.__pagesense_mutation_observer = observer;
  return window.__pagesense_mutations;
})()`

const pollScript = `window.__pagesense_mutations || 0`

// State is the sampled mutation counter for a tab.
type State struct {
	Counter uint64
}

const defaultPollInterval = 100 * time.Millisecond

// Tracker observes and polls the mutation counter for a single tab's driver.
type Tracker struct {
	driver       Evaluator
	pollInterval time.Duration
}

// New builds a Tracker bound to one tab's evaluator, polling at interval
// (falling back to a 100ms default when interval is zero).
func New(driver Evaluator, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Tracker{driver: driver, pollInterval: interval}
}

// Observe injects the mutation-counting script, idempotently.
func (t *Tracker) Observe(ctx context.Context) error {
	_, err := t.driver.EvaluateScript(ctx, observeScript)
	return err
}

// Poll samples the current mutation counter.
func (t *Tracker) Poll(ctx context.Context) (State, error) {
	raw, err := t.driver.EvaluateScript(ctx, pollScript)
	if err != nil {
		return State{}, err
	}
	n, parseErr := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if parseErr != nil {
		// A result that doesn't parse as the counter is treated as dirty,
		// not as "unchanged" - callers must re-snapshot rather than trust a
		// zero-value State.
		return State{}, parseErr
	}
	return State{Counter: n}, nil
}

// WaitForChanges polls until the counter strictly exceeds captured, or
// timeout elapses. It never mutates the page and honors ctx cancellation.
func (t *Tracker) WaitForChanges(ctx context.Context, captured uint64, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)

	for {
		state, err := t.Poll(ctx)
		if err != nil {
			return false, err
		}
		if state.Counter > captured {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(t.pollInterval):
		}
	}
}
