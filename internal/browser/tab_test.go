package browser

import (
	"testing"
	"time"

	"pagesense/internal/semantic"
	"pagesense/internal/store"
)

func TestNewTabStartsEmpty(t *testing.T) {
	tab := newTab("t1", newFakeDriver("<html></html>"), 10*time.Millisecond)
	if tab.State() != TabEmpty {
		t.Errorf("expected TabEmpty, got %v", tab.State())
	}
	if tab.Current() != nil {
		t.Error("expected no current snapshot on a new tab")
	}
	if tab.Previous() != nil {
		t.Error("expected no previous snapshot on a new tab")
	}
}

func TestSetSnapshotAdvancesCurrentToPrevious(t *testing.T) {
	tab := newTab("t1", newFakeDriver("<html></html>"), 10*time.Millisecond)

	first := &semantic.PageSnapshot{URL: "http://a.test/"}
	tab.setSnapshot(first, nil)
	if tab.Current() != first {
		t.Fatal("expected current to be the first snapshot")
	}
	if tab.Previous() != nil {
		t.Error("expected no previous after the first snapshot")
	}
	if tab.State() != TabLoaded {
		t.Errorf("expected TabLoaded after a snapshot, got %v", tab.State())
	}

	second := &semantic.PageSnapshot{URL: "http://b.test/"}
	tab.setSnapshot(second, nil)
	if tab.Current() != second {
		t.Error("expected current to be the second snapshot")
	}
	if tab.Previous() != first {
		t.Error("expected previous to be the first snapshot")
	}
}

func TestRefLocatorResolvesAgainstCurrentSnapshot(t *testing.T) {
	tab := newTab("t1", newFakeDriver("<html></html>"), 10*time.Millisecond)

	if _, ok := tab.RefLocator(1); ok {
		t.Error("expected no locator before any snapshot")
	}

	loc := semantic.DomLocator{Tag: "button", ID: "go"}
	tab.setSnapshot(&semantic.PageSnapshot{RefIndex: semantic.RefIndex{1: loc}}, nil)

	got, ok := tab.RefLocator(1)
	if !ok {
		t.Fatal("expected ref 1 to resolve")
	}
	if got != loc {
		t.Errorf("expected %+v, got %+v", loc, got)
	}
	if _, ok := tab.RefLocator(2); ok {
		t.Error("expected ref 2 to be absent")
	}
}

func TestMutationBaselineAndLastCounterAreIndependent(t *testing.T) {
	tab := newTab("t1", newFakeDriver("<html></html>"), 10*time.Millisecond)

	if _, ok := tab.LastMutationCounter(); ok {
		t.Error("expected no last counter on a new tab")
	}

	tab.SetMutationBaseline(5)
	tab.SetLastMutationCounter(9)

	if got := tab.MutationBaseline(); got != 5 {
		t.Errorf("expected baseline 5, got %d", got)
	}
	last, ok := tab.LastMutationCounter()
	if !ok || last != 9 {
		t.Errorf("expected last counter 9, got %d (ok=%v)", last, ok)
	}
}

func TestRecordingBufferLifecycle(t *testing.T) {
	tab := newTab("t1", newFakeDriver("<html></html>"), 10*time.Millisecond)

	if tab.IsRecording() {
		t.Error("expected no active recording on a new tab")
	}

	tab.AppendRecordedStep(store.RecordedStep{Tool: "click"})
	if tab.IsRecording() {
		t.Error("appending without StartRecording should not start one")
	}

	tab.StartRecording("login-flow", "example.test")
	if !tab.IsRecording() {
		t.Fatal("expected recording to be active after StartRecording")
	}
	tab.AppendRecordedStep(store.RecordedStep{Tool: "click"})
	tab.AppendRecordedStep(store.RecordedStep{Tool: "type_text"})

	rec := tab.StopRecording()
	if tab.IsRecording() {
		t.Error("expected recording to be inactive after StopRecording")
	}
	if rec.Name != "login-flow" || rec.Domain != "example.test" {
		t.Errorf("unexpected recording metadata: %+v", rec)
	}
	if len(rec.Steps) != 2 {
		t.Fatalf("expected 2 buffered steps, got %d", len(rec.Steps))
	}
}

func TestTabCallLockSerializesAccess(t *testing.T) {
	tab := newTab("t1", newFakeDriver("<html></html>"), 10*time.Millisecond)

	tab.Lock()
	done := make(chan struct{})
	go func() {
		tab.Lock()
		tab.Unlock()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second Lock should have blocked while the first is held")
	case <-time.After(20 * time.Millisecond):
	}
	tab.Unlock()
	<-done
}
