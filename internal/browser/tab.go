package browser

import (
	"sync"
	"time"

	"pagesense/internal/mutation"
	"pagesense/internal/semantic"
	"pagesense/internal/store"
	"pagesense/internal/taskcontext"
)

// TabState names the state-machine position described in §4.8:
// Empty -> Loading -> Loaded(current) -> Loaded(current, previous), with a
// terminal Closed reached by closing the tab.
type TabState string

const (
	TabEmpty   TabState = "empty"
	TabLoading TabState = "loading"
	TabLoaded  TabState = "loaded"
	TabClosed  TabState = "closed"
)

// Tab holds per-tab session state: the live driver handle, the current and
// previous snapshots, any declared task context, and the active recording
// buffer. Tool invocations for one tab are serialized by callMu in arrival order;
// invocations for different tabs proceed independently.
type Tab struct {
	ID         string
	Driver     PageDriver
	CreatedAt  time.Time
	LastActive time.Time

	// callMu serializes tool invocations against this tab in arrival order
	// (§5); it is distinct from mu, which only guards field access, so a
	// held callMu lock never blocks a concurrent State()/Current() read.
	callMu sync.Mutex

	mu       sync.Mutex
	state    TabState
	current  *semantic.PageSnapshot
	previous *semantic.PageSnapshot
	keyRef   semantic.KeyRefMap
	taskCtx  *taskcontext.Context
	tracker  *mutation.Tracker
	recName  string
	recDomain string
	recording []store.RecordedStep

	mutationBaseline uint64
	lastCounter      uint64
	hasLastCounter   bool
}

// LastMutationCounter returns the mutation counter sampled at the last
// successful snapshot, and whether one has been sampled yet.
func (t *Tab) LastMutationCounter() (uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastCounter, t.hasLastCounter
}

// SetLastMutationCounter records the mutation counter for the snapshot just taken.
func (t *Tab) SetLastMutationCounter(v uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastCounter = v
	t.hasLastCounter = true
}

// SetMutationBaseline records the mutation counter sampled just before a
// mutating action, so a later WaitForChanges call knows what "changed" means.
func (t *Tab) SetMutationBaseline(v uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mutationBaseline = v
}

// MutationBaseline returns the last recorded baseline.
func (t *Tab) MutationBaseline() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mutationBaseline
}

// TaskContext returns the declared task context, or nil if none is set.
func (t *Tab) TaskContext() *taskcontext.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.taskCtx
}

// SetTaskContext installs or replaces the declared task context.
func (t *Tab) SetTaskContext(ctx *taskcontext.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.taskCtx = ctx
}

// KeyRef returns the tab's current StableKey->ref map, for the next snapshot's
// preferred-ref pass.
func (t *Tab) KeyRef() semantic.KeyRefMap {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.keyRef
}

// RefLocator resolves ref against the current snapshot's ref index.
func (t *Tab) RefLocator(ref uint32) (semantic.DomLocator, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return semantic.DomLocator{}, false
	}
	loc, ok := t.current.RefIndex[ref]
	return loc, ok
}

// SetState forces the tab's lifecycle state, used for Loading/Closed transitions
// that aren't tied to a snapshot.
func (t *Tab) SetState(s TabState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s
}

// Tracker exposes the tab's mutation tracker.
func (t *Tab) Tracker() *mutation.Tracker {
	return t.tracker
}

func newTab(id string, driver PageDriver, pollInterval time.Duration) *Tab {
	return &Tab{
		ID: id, Driver: driver, CreatedAt: time.Now(), LastActive: time.Now(),
		state: TabEmpty, tracker: mutation.New(driver, pollInterval),
	}
}

// Lock serializes the caller against any other tool invocation on this tab.
func (t *Tab) Lock() { t.callMu.Lock() }

// Unlock releases the lock taken by Lock.
func (t *Tab) Unlock() { t.callMu.Unlock() }

// State reports the tab's current lifecycle position.
func (t *Tab) State() TabState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Current returns the tab's current snapshot, or nil if none was taken yet.
func (t *Tab) Current() *semantic.PageSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Previous returns the tab's previous snapshot, or nil if there was no prior one.
func (t *Tab) Previous() *semantic.PageSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.previous
}

// setSnapshot atomically advances current -> previous, current -> new, so a
// reader never observes a previous that postdates current.
func (t *Tab) setSnapshot(snap *semantic.PageSnapshot, keyRef semantic.KeyRefMap) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.previous = t.current
	t.current = snap
	t.keyRef = keyRef
	t.state = TabLoaded
	t.LastActive = time.Now()
}

// IsRecording reports whether a recording buffer is active.
func (t *Tab) IsRecording() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recName != ""
}

// StartRecording begins buffering tool invocations under name/domain.
func (t *Tab) StartRecording(name, domain string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recName = name
	t.recDomain = domain
	t.recording = nil
}

// AppendRecordedStep buffers one invocation if a recording is active.
func (t *Tab) AppendRecordedStep(step store.RecordedStep) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.recName == "" {
		return
	}
	t.recording = append(t.recording, step)
}

// StopRecording ends the active recording and returns it for persistence.
func (t *Tab) StopRecording() store.Recording {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec := store.Recording{Name: t.recName, Domain: t.recDomain, Steps: t.recording, SavedAt: time.Now()}
	t.recName = ""
	t.recDomain = ""
	t.recording = nil
	return rec
}
