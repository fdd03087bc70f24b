package mutation

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

type fakeEvaluator struct {
	counter atomic.Uint64
}

func (f *fakeEvaluator) EvaluateScript(ctx context.Context, script string) (string, error) {
	return strconv.FormatUint(f.counter.Load(), 10), nil
}

func TestWaitForChangesTimesOutOnStaticPage(t *testing.T) {
	eval := &fakeEvaluator{}
	tr := New(eval, 10*time.Millisecond)
	changed, err := tr.WaitForChanges(context.Background(), 0, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("expected no change on a static page")
	}
}

func TestWaitForChangesDetectsTick(t *testing.T) {
	eval := &fakeEvaluator{}
	tr := New(eval, 10*time.Millisecond)

	go func() {
		time.Sleep(20 * time.Millisecond)
		eval.counter.Store(1)
	}()

	changed, err := tr.WaitForChanges(context.Background(), 0, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected change to be detected")
	}
}

type fixedEvaluator struct{ result string }

func (f *fixedEvaluator) EvaluateScript(ctx context.Context, script string) (string, error) {
	return f.result, nil
}

func TestPollFailsClosedOnUnparsableResult(t *testing.T) {
	tr := New(&fixedEvaluator{result: "undefined"}, 10*time.Millisecond)
	state, err := tr.Poll(context.Background())
	if err == nil {
		t.Fatal("expected an error for an unparsable poll result")
	}
	if state.Counter != 0 {
		t.Errorf("expected zero-value state alongside the error, got %+v", state)
	}
}

func TestWaitForChangesFailsClosedOnUnparsableResult(t *testing.T) {
	tr := New(&fixedEvaluator{result: "NaN"}, 10*time.Millisecond)
	_, err := tr.WaitForChanges(context.Background(), 0, 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected WaitForChanges to surface the parse error instead of reporting no change")
	}
}
