package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"pagesense/internal/dom"
	"pagesense/internal/semantic"
	"pagesense/internal/store"
)

// fakeDriver is a hand-written PageDriver stand-in for tests that exercise
// SessionManager/Tab logic without a real Chrome instance. It answers the
// mutation tracker's observe/poll scripts and the session manager's geometry
// probe by inspecting the script text, and records every call it receives.
type fakeDriver struct {
	mu sync.Mutex

	html       string
	url        string
	title      string
	cookies    []store.Cookie
	mutations  uint64
	viewportH  int
	scrollY    int
	docHeight  int

	clicks   []semantic.DomLocator
	typed    []string
	selected []string
	scrolls  [][2]int
	closed   bool

	clickErr   error
	resolveErr error

	// geomRows answers the whole-page geometry probe snapshotLocked issues,
	// positional by document order. geomBySelector answers the locator-keyed
	// probe retagOffscreen issues, keyed by the same selectorFor string.
	geomRows       []dom.Geometry
	geomBySelector map[string]dom.Geometry
}

func newFakeDriver(html string) *fakeDriver {
	return &fakeDriver{html: html, url: "http://example.test/", title: "Example", viewportH: 800, docHeight: 2000}
}

func (d *fakeDriver) LoadURL(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.url = url
	return nil
}

func (d *fakeDriver) EvaluateScript(ctx context.Context, script string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case strings.Contains(script, "innerHeight"):
		return fmt.Sprintf("[%d,%d,%d]", d.viewportH, d.scrollY, d.docHeight), nil
	case strings.Contains(script, "mutations"):
		return fmt.Sprintf("%d", d.mutations), nil
	case strings.Contains(script, "querySelectorAll('*')"):
		return encodeGeometryRows(d.geomRows), nil
	case strings.Contains(script, "const sels = "):
		sels := extractSelectors(script)
		return encodeLocatorGeometry(sels, d.geomBySelector), nil
	default:
		return "", nil
	}
}

// encodeGeometryRows mirrors what geometryProbeScript would report in a real
// browser: one row per element, in document order.
func encodeGeometryRows(geoms []dom.Geometry) string {
	rows := make([][5]float64, len(geoms))
	for i, g := range geoms {
		if g.Rect == nil {
			continue
		}
		rows[i] = rectRow(*g.Rect, g.Visible)
	}
	b, _ := json.Marshal(rows)
	return string(b)
}

// encodeLocatorGeometry mirrors locatorGeometryScript's output: one row per
// requested selector, null for anything not present in by.
func encodeLocatorGeometry(sels []string, by map[string]dom.Geometry) string {
	out := make([]*[5]float64, len(sels))
	for i, sel := range sels {
		g, ok := by[sel]
		if !ok || g.Rect == nil {
			continue
		}
		row := rectRow(*g.Rect, g.Visible)
		out[i] = &row
	}
	b, _ := json.Marshal(out)
	return string(b)
}

func rectRow(r dom.Rect, visible bool) [5]float64 {
	v := 0.0
	if visible {
		v = 1
	}
	return [5]float64{r.X, r.Y, r.Width, r.Height, v}
}

// extractSelectors recovers the selector list locatorGeometryScript embedded
// as a JSON array literal, so the fake can answer by selector without
// actually evaluating JS.
func extractSelectors(script string) []string {
	const marker = "const sels = "
	start := strings.Index(script, marker)
	if start < 0 {
		return nil
	}
	rest := script[start+len(marker):]
	end := strings.Index(rest, ";")
	if end < 0 {
		return nil
	}
	var sels []string
	_ = json.Unmarshal([]byte(rest[:end]), &sels)
	return sels
}

func (d *fakeDriver) FetchDOMHTML(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.html, nil
}

func (d *fakeDriver) Click(ctx context.Context, loc semantic.DomLocator) error {
	if d.clickErr != nil {
		return d.clickErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clicks = append(d.clicks, loc)
	d.mutations++
	return nil
}

func (d *fakeDriver) TypeText(ctx context.Context, loc semantic.DomLocator, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.typed = append(d.typed, text)
	d.mutations++
	return nil
}

func (d *fakeDriver) SelectOption(ctx context.Context, loc semantic.DomLocator, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selected = append(d.selected, value)
	d.mutations++
	return nil
}

func (d *fakeDriver) ScrollBy(ctx context.Context, dx, dy int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scrolls = append(d.scrolls, [2]int{dx, dy})
	d.scrollY += dy
	return nil
}

func (d *fakeDriver) ScrollToLocator(ctx context.Context, loc semantic.DomLocator) error {
	if d.resolveErr != nil {
		return d.resolveErr
	}
	return nil
}

func (d *fakeDriver) GetCookies(ctx context.Context) ([]store.Cookie, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cookies, nil
}

func (d *fakeDriver) SetCookies(ctx context.Context, cookies []store.Cookie) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cookies = cookies
	return nil
}

func (d *fakeDriver) Screenshot(ctx context.Context, fullPage bool, annotate map[uint32]semantic.DomLocator) ([]byte, error) {
	return []byte("fake-png"), nil
}

func (d *fakeDriver) CurrentURL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url
}

func (d *fakeDriver) Title(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title, nil
}

func (d *fakeDriver) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// setHTML swaps the HTML the next FetchDOMHTML call returns and bumps the
// mutation counter so a pending Snapshot call re-runs the pipeline.
func (d *fakeDriver) setHTML(html string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.html = html
	d.mutations++
}
