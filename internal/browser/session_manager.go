package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"pagesense/internal/config"
	"pagesense/internal/diff"
	"pagesense/internal/dom"
	"pagesense/internal/facts"
	"pagesense/internal/semantic"
	"pagesense/internal/serialize"
	"pagesense/internal/snapshoterr"
	"pagesense/internal/store"
	"pagesense/internal/taskcontext"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// TabSummary is the lightweight metadata returned by list_tabs.
type TabSummary struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	State      TabState  `json:"state"`
	Focused    bool      `json:"focused"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// SessionManager owns the detached Chrome instance and the set of open tabs.
// It is the C9 orchestrator: every tool dispatches through one of its
// methods, which serializes against the target tab, drives the PageDriver,
// and runs the semantic pipeline to produce the result the tool returns.
type SessionManager struct {
	cfg   config.BrowserConfig
	facts *facts.Log

	authStore *store.AuthStore
	recStore  *store.RecordingStore

	mu           sync.RWMutex
	browser      *rod.Browser
	controlURL   string
	tabs         map[string]*Tab
	focusedTabID string
}

// NewSessionManager builds a manager bound to cfg, with log as the optional
// fact sink and dataDir as the root for auth/recording persistence.
func NewSessionManager(cfg config.BrowserConfig, log *facts.Log, dataDir string) *SessionManager {
	if dataDir == "" {
		dataDir = "."
	}
	return &SessionManager{
		cfg:       cfg,
		facts:     log,
		authStore: store.NewAuthStore(dataDir),
		recStore:  store.NewRecordingStore(dataDir),
		tabs:      make(map[string]*Tab),
	}
}

// Start connects to an existing Chrome or launches a new one using Rod's launcher.
func (m *SessionManager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			m.mu.Unlock()
			return nil
		}
		log.Printf("stale browser connection detected, reconnecting")
		_ = m.browser.Close()
		m.browser = nil
		m.controlURL = ""
		m.tabs = make(map[string]*Tab)
	}
	m.mu.Unlock()

	controlURL := m.cfg.DebuggerURL
	if controlURL == "" && len(m.cfg.Launch) > 0 {
		bin := m.cfg.Launch[0]
		launch := launcher.New().Bin(bin).Headless(m.cfg.IsHeadless())
		if len(m.cfg.Launch) > 1 {
			for _, rawFlag := range m.cfg.Launch[1:] {
				flagStr := strings.TrimLeft(rawFlag, "-")
				name, val, hasVal := strings.Cut(flagStr, "=")
				if hasVal {
					launch = launch.Set(flags.Flag(name), val)
				} else {
					launch = launch.Set(flags.Flag(name))
				}
			}
		}
		url, err := launch.Launch()
		if err != nil {
			fallback := launcher.New().Bin(bin).Headless(m.cfg.IsHeadless())
			alt, altErr := fallback.Launch()
			if altErr != nil {
				return fmt.Errorf("launch chrome: %w (fallback: %v)", err, altErr)
			}
			controlURL = alt
		} else {
			controlURL = url
		}
	}

	if controlURL == "" {
		return errors.New("no debugger_url or launch command provided")
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	m.mu.Lock()
	m.browser = browser
	m.controlURL = controlURL
	m.mu.Unlock()
	log.Printf("browser connected at %s", controlURL)
	return nil
}

// ControlURL returns the WebSocket debugger URL for the connected browser.
func (m *SessionManager) ControlURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.controlURL
}

// IsConnected returns whether the browser is currently connected.
func (m *SessionManager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.browser != nil
}

// Shutdown closes every tracked tab and the underlying browser.
func (m *SessionManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, tab := range m.tabs {
		_ = tab.Driver.Close(ctx)
		delete(m.tabs, id)
	}

	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	m.controlURL = ""
	log.Printf("browser shutdown complete")
	return err
}

// --- tab lifecycle -------------------------------------------------------

// OpenTab creates a new incognito page, optionally navigates it, and makes
// it the focused tab.
func (m *SessionManager) OpenTab(ctx context.Context, url string) (TabSummary, error) {
	m.mu.RLock()
	browser := m.browser
	m.mu.RUnlock()
	if browser == nil {
		return TabSummary{}, snapshoterr.New(snapshoterr.KindNoSession, "browser not connected")
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return TabSummary{}, snapshoterr.Wrap(snapshoterr.KindDriver, "open incognito context", err)
	}
	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return TabSummary{}, snapshoterr.Wrap(snapshoterr.KindDriver, "create page", err)
	}
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width: m.cfg.GetViewportWidth(), Height: m.cfg.GetViewportHeight(), DeviceScaleFactor: 1, Mobile: false,
	}).Call(page); err != nil {
		log.Printf("warning: failed to set viewport: %v", err)
	}

	driver := newRodDriver(page, m.cfg.NavigationTimeout())
	tab := newTab(uuid.NewString(), driver, m.cfg.MutationPollInterval())

	m.mu.Lock()
	m.tabs[tab.ID] = tab
	m.focusedTabID = tab.ID
	m.mu.Unlock()

	if url != "" {
		tab.SetState(TabLoading)
		if err := driver.LoadURL(ctx, url); err != nil {
			return TabSummary{}, err
		}
		tab.SetState(TabLoaded)
		m.facts.Record(ctx, "navigated", tab.ID, url, time.Now().Unix())
	}

	return m.summarize(tab), nil
}

func (m *SessionManager) summarize(t *Tab) TabSummary {
	m.mu.RLock()
	focused := m.focusedTabID == t.ID
	m.mu.RUnlock()
	title, _ := t.Driver.Title(context.Background())
	return TabSummary{
		ID: t.ID, URL: t.Driver.CurrentURL(), Title: title, State: t.State(),
		Focused: focused, CreatedAt: t.CreatedAt, LastActive: t.LastActive,
	}
}

// ListTabs returns summaries of every open tab.
func (m *SessionManager) ListTabs() []TabSummary {
	m.mu.RLock()
	tabs := make([]*Tab, 0, len(m.tabs))
	for _, t := range m.tabs {
		tabs = append(tabs, t)
	}
	m.mu.RUnlock()

	out := make([]TabSummary, 0, len(tabs))
	for _, t := range tabs {
		out = append(out, m.summarize(t))
	}
	return out
}

// SwitchTab changes the focused tab; subsequent tool calls that don't name a
// tab explicitly act on this one.
func (m *SessionManager) SwitchTab(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tabs[id]; !ok {
		return snapshoterr.New(snapshoterr.KindTabNotFound, id)
	}
	m.focusedTabID = id
	return nil
}

// CloseTab closes the tab's page and drops it from the manager.
func (m *SessionManager) CloseTab(ctx context.Context, id string) error {
	m.mu.Lock()
	tab, ok := m.tabs[id]
	if !ok {
		m.mu.Unlock()
		return snapshoterr.New(snapshoterr.KindTabNotFound, id)
	}
	delete(m.tabs, id)
	if m.focusedTabID == id {
		m.focusedTabID = ""
		for other := range m.tabs {
			m.focusedTabID = other
			break
		}
	}
	m.mu.Unlock()

	tab.SetState(TabClosed)
	m.facts.Record(ctx, "tab_closed", id, time.Now().Unix())
	return tab.Driver.Close(ctx)
}

// Tab resolves a tab by id, or the focused tab when id is empty.
func (m *SessionManager) Tab(id string) (*Tab, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id == "" {
		id = m.focusedTabID
	}
	if id == "" {
		return nil, snapshoterr.New(snapshoterr.KindNoSession, "no focused tab")
	}
	t, ok := m.tabs[id]
	if !ok {
		return nil, snapshoterr.New(snapshoterr.KindTabNotFound, id)
	}
	return t, nil
}

// --- navigation and snapshotting -----------------------------------------

// Navigate loads url in the tab and returns the resulting snapshot.
func (m *SessionManager) Navigate(ctx context.Context, tabID, url string) (*semantic.PageSnapshot, error) {
	tab, err := m.Tab(tabID)
	if err != nil {
		return nil, err
	}
	tab.Lock()
	defer tab.Unlock()

	tab.SetState(TabLoading)
	if err := tab.Driver.LoadURL(ctx, url); err != nil {
		return nil, err
	}
	if err := tab.Tracker().Observe(ctx); err != nil {
		log.Printf("warning: mutation observer injection failed: %v", err)
	}
	m.facts.Record(ctx, "navigated", tab.ID, url, time.Now().Unix())
	return m.snapshotLocked(ctx, tab)
}

// Snapshot returns the tab's current snapshot unchanged if the mutation
// tracker reports no DOM activity since it was captured; otherwise it
// re-runs the pipeline and advances current -> previous.
func (m *SessionManager) Snapshot(ctx context.Context, tabID string) (*semantic.PageSnapshot, error) {
	tab, err := m.Tab(tabID)
	if err != nil {
		return nil, err
	}
	tab.Lock()
	defer tab.Unlock()

	if cur := tab.Current(); cur != nil {
		if last, ok := tab.LastMutationCounter(); ok {
			if err := tab.Tracker().Observe(ctx); err == nil {
				if state, err := tab.Tracker().Poll(ctx); err == nil && state.Counter == last {
					return cur, nil
				}
			}
		}
	}
	return m.snapshotLocked(ctx, tab)
}

func (m *SessionManager) snapshotLocked(ctx context.Context, tab *Tab) (*semantic.PageSnapshot, error) {
	html, err := tab.Driver.FetchDOMHTML(ctx)
	if err != nil {
		return nil, err
	}
	root, err := dom.ParseString(html)
	if err != nil {
		return nil, snapshoterr.Wrap(snapshoterr.KindInternal, "parse DOM", err)
	}
	if raw, err := tab.Driver.EvaluateScript(ctx, geometryProbeScript); err == nil {
		if geoms := parseGeometryRows(raw); len(geoms) > 0 {
			dom.TagGeometry(root, geoms)
		}
	}

	result := semantic.Run(root, tab.KeyRef())

	title, _ := tab.Driver.Title(ctx)
	viewportH, scrollY, docH := m.readGeometry(ctx, tab)

	snap := &semantic.PageSnapshot{
		URL: tab.Driver.CurrentURL(), Title: title,
		ViewportHeight: viewportH, ScrollY: scrollY, DocumentHeight: docH,
		Root: result.Root, RefIndex: result.RefIndex, DomHash: result.DomHash,
	}
	tab.setSnapshot(snap, result.KeyRef)
	if err := tab.Tracker().Observe(ctx); err == nil {
		if state, err := tab.Tracker().Poll(ctx); err == nil {
			tab.SetLastMutationCounter(state.Counter)
		}
	}
	m.facts.Record(ctx, "snapshot_taken", tab.ID, snap.DomHash, countNodes(snap.Root), time.Now().Unix())
	return snap, nil
}

func countNodes(root *semantic.Node) int {
	n := 0
	semantic.Walk(root, func(*semantic.Node) { n++ })
	return n
}

func (m *SessionManager) readGeometry(ctx context.Context, tab *Tab) (viewportH, scrollY, docH int) {
	raw, err := tab.Driver.EvaluateScript(ctx,
		`JSON.stringify([window.innerHeight, window.scrollY, document.documentElement.scrollHeight])`)
	if err != nil {
		return m.cfg.GetViewportHeight(), 0, 0
	}
	var vals [3]int
	_, _ = fmt.Sscanf(strings.Trim(raw, "[]"), "%d,%d,%d", &vals[0], &vals[1], &vals[2])
	return vals[0], vals[1], vals[2]
}

// PageDiff re-snapshots the tab and returns the diff against the snapshot it
// replaces. If the tab had no previous snapshot, it returns the fresh
// snapshot with a nil diff instead.
func (m *SessionManager) PageDiff(ctx context.Context, tabID string) ([]diff.Change, *semantic.PageSnapshot, error) {
	cur, err := m.Snapshot(ctx, tabID)
	if err != nil {
		return nil, nil, err
	}
	tab, err := m.Tab(tabID)
	if err != nil {
		return nil, nil, err
	}
	prev := tab.Previous()
	if prev == nil {
		return nil, cur, nil
	}
	changes := diff.Diff(prev.Root, cur.Root)
	var added, removed, modified int
	for _, c := range changes {
		switch c.Kind {
		case diff.Added:
			added++
		case diff.Removed:
			removed++
		case diff.Modified:
			modified++
		}
	}
	m.facts.Record(ctx, "diff_emitted", tab.ID, added, removed, modified, time.Now().Unix())
	return changes, cur, nil
}

// FocusedSnapshot renders the tab's current snapshot through its declared
// task context filter, or the full tree when no context is set.
func (m *SessionManager) FocusedSnapshot(tabID string) (*semantic.Node, semantic.PageSnapshot, error) {
	tab, err := m.Tab(tabID)
	if err != nil {
		return nil, semantic.PageSnapshot{}, err
	}
	tab.Lock()
	defer tab.Unlock()

	cur := tab.Current()
	if cur == nil {
		return nil, semantic.PageSnapshot{}, snapshoterr.New(snapshoterr.KindInvalidArgs, "no snapshot taken yet")
	}
	if ctx := tab.TaskContext(); ctx != nil {
		return taskcontext.Filter(cur.Root, *ctx), *cur, nil
	}
	return cur.Root, *cur, nil
}

// SetTaskContext installs a relevance filter on the tab.
func (m *SessionManager) SetTaskContext(tabID string, ctx taskcontext.Context) error {
	tab, err := m.Tab(tabID)
	if err != nil {
		return err
	}
	tab.Lock()
	defer tab.Unlock()
	tab.SetTaskContext(&ctx)
	return nil
}

// ClearTaskContext removes any relevance filter on the tab.
func (m *SessionManager) ClearTaskContext(tabID string) error {
	tab, err := m.Tab(tabID)
	if err != nil {
		return err
	}
	tab.Lock()
	defer tab.Unlock()
	tab.SetTaskContext(nil)
	return nil
}

// --- interaction -----------------------------------------------------------

func (m *SessionManager) resolveRef(tab *Tab, ref uint32) (semantic.DomLocator, error) {
	loc, ok := tab.RefLocator(ref)
	if !ok {
		return semantic.DomLocator{}, snapshoterr.New(snapshoterr.KindRefNotFound, fmt.Sprintf("@e%d", ref))
	}
	return loc, nil
}

func (m *SessionManager) markBaseline(ctx context.Context, tab *Tab) {
	if state, err := tab.Tracker().Poll(ctx); err == nil {
		tab.SetMutationBaseline(state.Counter)
	}
}

// Click dispatches a click at the element named by ref.
func (m *SessionManager) Click(ctx context.Context, tabID string, ref uint32) error {
	tab, err := m.Tab(tabID)
	if err != nil {
		return err
	}
	tab.Lock()
	defer tab.Unlock()

	loc, err := m.resolveRef(tab, ref)
	if err != nil {
		return err
	}
	m.markBaseline(ctx, tab)
	if err := tab.Driver.Click(ctx, loc); err != nil {
		return err
	}
	m.facts.Record(ctx, "interacted", tab.ID, "click", ref, time.Now().Unix())
	tab.AppendRecordedStep(store.RecordedStep{Timestamp: time.Now(), Tool: "click",
		Args: map[string]interface{}{"ref": ref}, ResultingLocator: loc.StructuralPath})
	return nil
}

// TypeText types text into the element named by ref, replacing its current value.
func (m *SessionManager) TypeText(ctx context.Context, tabID string, ref uint32, text string) error {
	tab, err := m.Tab(tabID)
	if err != nil {
		return err
	}
	tab.Lock()
	defer tab.Unlock()

	loc, err := m.resolveRef(tab, ref)
	if err != nil {
		return err
	}
	m.markBaseline(ctx, tab)
	if err := tab.Driver.TypeText(ctx, loc, text); err != nil {
		return err
	}
	m.facts.Record(ctx, "interacted", tab.ID, "type_text", ref, time.Now().Unix())
	tab.AppendRecordedStep(store.RecordedStep{Timestamp: time.Now(), Tool: "type_text",
		Args: map[string]interface{}{"ref": ref, "text": text}, ResultingLocator: loc.StructuralPath})
	return nil
}

// SelectOption picks value in the <select> named by ref.
func (m *SessionManager) SelectOption(ctx context.Context, tabID string, ref uint32, value string) error {
	tab, err := m.Tab(tabID)
	if err != nil {
		return err
	}
	tab.Lock()
	defer tab.Unlock()

	loc, err := m.resolveRef(tab, ref)
	if err != nil {
		return err
	}
	m.markBaseline(ctx, tab)
	if err := tab.Driver.SelectOption(ctx, loc, value); err != nil {
		return err
	}
	m.facts.Record(ctx, "interacted", tab.ID, "select_option", ref, time.Now().Unix())
	tab.AppendRecordedStep(store.RecordedStep{Timestamp: time.Now(), Tool: "select_option",
		Args: map[string]interface{}{"ref": ref, "value": value}, ResultingLocator: loc.StructuralPath})
	return nil
}

// ScrollBy scrolls the viewport by (dx, dy) pixels, then re-tags the current
// snapshot's offscreen flags from fresh geometry without a full re-pipeline.
func (m *SessionManager) ScrollBy(ctx context.Context, tabID string, dx, dy int) error {
	tab, err := m.Tab(tabID)
	if err != nil {
		return err
	}
	tab.Lock()
	defer tab.Unlock()
	if err := tab.Driver.ScrollBy(ctx, dx, dy); err != nil {
		return err
	}
	m.retagOffscreen(ctx, tab)
	return nil
}

// ScrollToRef scrolls the element named by ref into view, then re-tags the
// current snapshot's offscreen flags from fresh geometry.
func (m *SessionManager) ScrollToRef(ctx context.Context, tabID string, ref uint32) error {
	tab, err := m.Tab(tabID)
	if err != nil {
		return err
	}
	tab.Lock()
	defer tab.Unlock()

	loc, err := m.resolveRef(tab, ref)
	if err != nil {
		return err
	}
	if err := tab.Driver.ScrollToLocator(ctx, loc); err != nil {
		return err
	}
	m.retagOffscreen(ctx, tab)
	return nil
}

// retagOffscreen refreshes the offscreen state flag on every node of the
// current snapshot by re-querying live geometry for their locators, keyed by
// the same CSS-selector scheme selectorFor builds for interaction tools.
// Unmatched or not-yet-reacquirable nodes keep whatever flag they already
// carry; this is a cheap patch, not a re-pipeline, so it never invalidates
// roles, names, or structure.
func (m *SessionManager) retagOffscreen(ctx context.Context, tab *Tab) {
	snap := tab.Current()
	if snap == nil || snap.Root == nil {
		return
	}
	var nodes []*semantic.Node
	var selectors []string
	semantic.Walk(snap.Root, func(n *semantic.Node) {
		if n.Locator == (semantic.DomLocator{}) {
			return
		}
		nodes = append(nodes, n)
		selectors = append(selectors, selectorFor(n.Locator))
	})
	if len(nodes) == 0 {
		return
	}
	script, err := locatorGeometryScript(selectors)
	if err != nil {
		return
	}
	raw, err := tab.Driver.EvaluateScript(ctx, script)
	if err != nil {
		return
	}
	geoms := parseLocatorGeometryRows(raw)
	for i, n := range nodes {
		if i >= len(geoms) || !geoms[i].Known || geoms[i].Rect == nil {
			continue
		}
		n.SetState(semantic.StateOffscreen, semantic.IsOffscreen(*geoms[i].Rect))
	}
}

// WaitForChanges blocks until the tab's DOM mutates since the last recorded
// baseline, or timeout elapses.
func (m *SessionManager) WaitForChanges(ctx context.Context, tabID string, timeout time.Duration) (bool, error) {
	tab, err := m.Tab(tabID)
	if err != nil {
		return false, err
	}
	baseline := tab.MutationBaseline()
	changed, err := tab.Tracker().WaitForChanges(ctx, baseline, timeout)
	if err != nil {
		return false, err
	}
	if changed {
		counter := baseline
		if state, err := tab.Tracker().Poll(ctx); err == nil {
			counter = state.Counter
		}
		m.facts.Record(ctx, "mutation_observed", tab.ID, counter, time.Now().Unix())
	}
	return changed, nil
}

// Screenshot captures the tab's viewport or full page, optionally annotating
// the given refs with their @eN labels.
func (m *SessionManager) Screenshot(ctx context.Context, tabID string, fullPage bool, annotateRefs []uint32) ([]byte, error) {
	tab, err := m.Tab(tabID)
	if err != nil {
		return nil, err
	}
	tab.Lock()
	defer tab.Unlock()

	annotate := map[uint32]semantic.DomLocator{}
	for _, ref := range annotateRefs {
		if loc, ok := tab.RefLocator(ref); ok {
			annotate[ref] = loc
		}
	}
	return tab.Driver.Screenshot(ctx, fullPage, annotate)
}

// --- auth profiles ---------------------------------------------------------

// SaveAuth captures the tab's cookies under a named profile.
func (m *SessionManager) SaveAuth(ctx context.Context, tabID, name, domain string) error {
	tab, err := m.Tab(tabID)
	if err != nil {
		return err
	}
	cookies, err := tab.Driver.GetCookies(ctx)
	if err != nil {
		return err
	}
	return m.authStore.Save(store.AuthProfile{Name: name, Domain: domain, Cookies: cookies, SavedAt: time.Now()})
}

// LoadAuth restores a named profile's cookies into the tab.
func (m *SessionManager) LoadAuth(ctx context.Context, tabID, name, domain string) error {
	tab, err := m.Tab(tabID)
	if err != nil {
		return err
	}
	profile, err := m.authStore.Load(name, domain)
	if err != nil {
		return snapshoterr.Wrap(snapshoterr.KindInvalidArgs, "load auth profile", err)
	}
	return tab.Driver.SetCookies(ctx, profile.Cookies)
}

// ListAuth enumerates saved profile names.
func (m *SessionManager) ListAuth() ([]string, error) { return m.authStore.List() }

// DeleteAuth removes a saved profile.
func (m *SessionManager) DeleteAuth(name, domain string) error { return m.authStore.Delete(name, domain) }

// --- recordings --------------------------------------------------------------

// StartRecording begins buffering subsequent tool invocations on the tab.
func (m *SessionManager) StartRecording(tabID, name, domain string) error {
	tab, err := m.Tab(tabID)
	if err != nil {
		return err
	}
	tab.StartRecording(name, domain)
	return nil
}

// StopRecording ends the active recording and persists it.
func (m *SessionManager) StopRecording(tabID string) error {
	tab, err := m.Tab(tabID)
	if err != nil {
		return err
	}
	rec := tab.StopRecording()
	if len(rec.Steps) == 0 {
		return snapshoterr.New(snapshoterr.KindInvalidArgs, "no recording in progress")
	}
	return m.recStore.Save(rec)
}

// ListRecordings enumerates saved recording names.
func (m *SessionManager) ListRecordings() ([]string, error) { return m.recStore.List() }

// DeleteRecording removes a saved recording.
func (m *SessionManager) DeleteRecording(name, domain string) error {
	return m.recStore.Delete(name, domain)
}

// ReplayRecording re-dispatches a saved recording's steps against the tab,
// re-resolving each step's ref against the live ref index rather than
// trusting the recorded one, since refs are only stable within one session.
func (m *SessionManager) ReplayRecording(ctx context.Context, tabID, name, domain string) error {
	tab, err := m.Tab(tabID)
	if err != nil {
		return err
	}
	rec, err := m.recStore.Load(name, domain)
	if err != nil {
		return snapshoterr.Wrap(snapshoterr.KindInvalidArgs, "load recording", err)
	}

	for _, step := range rec.Steps {
		if err := m.replayStep(ctx, tab.ID, step); err != nil {
			return fmt.Errorf("replay step %q: %w", step.Tool, err)
		}
	}
	return nil
}

func (m *SessionManager) replayStep(ctx context.Context, tabID string, step store.RecordedStep) error {
	refOf := func() uint32 {
		if v, ok := step.Args["ref"]; ok {
			if f, ok := v.(float64); ok {
				return uint32(f)
			}
		}
		return 0
	}
	switch step.Tool {
	case "click":
		return m.Click(ctx, tabID, refOf())
	case "type_text":
		text, _ := step.Args["text"].(string)
		return m.TypeText(ctx, tabID, refOf(), text)
	case "select_option":
		value, _ := step.Args["value"].(string)
		return m.SelectOption(ctx, tabID, refOf(), value)
	case "navigate":
		url, _ := step.Args["url"].(string)
		_, err := m.Navigate(ctx, tabID, url)
		return err
	default:
		return fmt.Errorf("unsupported recorded tool %q", step.Tool)
	}
}

// --- facts -------------------------------------------------------------------

// Facts exposes the manager's fact log for the query_facts/await_fact tools.
func (m *SessionManager) Facts() *facts.Log { return m.facts }

// SerializeHeader builds a serialize.Header from a snapshot.
func SerializeHeader(snap semantic.PageSnapshot) serialize.Header {
	host := snap.URL
	if idx := strings.Index(host, "://"); idx >= 0 {
		host = host[idx+3:]
	}
	if idx := strings.IndexAny(host, "/?#"); idx >= 0 {
		host = host[:idx]
	}
	return serialize.Header{
		Title: snap.Title, Host: host, ScrollY: snap.ScrollY,
		ViewportHeight: snap.ViewportHeight, DocumentHeight: snap.DocumentHeight,
	}
}
