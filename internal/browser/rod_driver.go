package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pagesense/internal/dom"
	"pagesense/internal/semantic"
	"pagesense/internal/snapshoterr"
	"pagesense/internal/store"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// geometryProbeScript walks every element in the live DOM in document order
// (the same order convert() recurses in) and reports its bounding rect plus
// a cheap visibility heuristic, so the pipeline can tag dom.Node.Geometry
// before P1/P2 run. One batched eval beats one round trip per element.
const geometryProbeScript = `(() => {
	const els = document.querySelectorAll('*');
	const out = [];
	for (const el of els) {
		const r = el.getBoundingClientRect();
		const cs = window.getComputedStyle(el);
		const visible = cs.display !== 'none' && cs.visibility !== 'hidden' &&
			parseFloat(cs.opacity) !== 0 && r.width > 0 && r.height > 0;
		out.push([r.x, r.y, r.width, r.height, visible ? 1 : 0]);
	}
	return JSON.stringify(out);
})()`

// locatorGeometryScript builds a batched probe keyed by the same CSS
// selectors selectorFor already builds for Click/TypeText/ScrollToLocator.
// Selectors with no live match report null, which parseLocatorGeometryRows
// leaves as unknown geometry rather than guessing.
func locatorGeometryScript(selectors []string) (string, error) {
	raw, err := json.Marshal(selectors)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(() => {
		const sels = %s;
		const out = sels.map(sel => {
			let el;
			try { el = document.querySelector(sel); } catch (e) { el = null; }
			if (!el) return null;
			const r = el.getBoundingClientRect();
			const cs = window.getComputedStyle(el);
			const visible = cs.display !== 'none' && cs.visibility !== 'hidden' &&
				parseFloat(cs.opacity) !== 0 && r.width > 0 && r.height > 0;
			return [r.x, r.y, r.width, r.height, visible ? 1 : 0];
		});
		return JSON.stringify(out);
	})()`, string(raw)), nil
}

// parseGeometryRows decodes geometryProbeScript's output. Every row is
// present (document.querySelectorAll('*') never skips an element), so
// malformed JSON is the only failure mode and degrades to no geometry.
func parseGeometryRows(raw string) []dom.Geometry {
	var rows [][5]float64
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil
	}
	out := make([]dom.Geometry, len(rows))
	for i, row := range rows {
		out[i] = dom.Geometry{
			Rect:    &dom.Rect{X: row[0], Y: row[1], Width: row[2], Height: row[3]},
			Visible: row[4] != 0,
			Known:   true,
		}
	}
	return out
}

// parseLocatorGeometryRows decodes locatorGeometryScript's output, where an
// unmatched selector comes back as JSON null.
func parseLocatorGeometryRows(raw string) []dom.Geometry {
	var rows []*[5]float64
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil
	}
	out := make([]dom.Geometry, len(rows))
	for i, row := range rows {
		if row == nil {
			continue
		}
		r := *row
		out[i] = dom.Geometry{
			Rect:    &dom.Rect{X: r[0], Y: r[1], Width: r[2], Height: r[3]},
			Visible: r[4] != 0,
			Known:   true,
		}
	}
	return out
}

// rodDriver implements PageDriver over a single Rod page.
type rodDriver struct {
	page    *rod.Page
	timeout time.Duration
}

// newRodDriver wraps an already-created Rod page.
func newRodDriver(page *rod.Page, timeout time.Duration) *rodDriver {
	return &rodDriver{page: page, timeout: timeout}
}

func (d *rodDriver) ctxPage(ctx context.Context) *rod.Page {
	return d.page.Context(ctx)
}

func (d *rodDriver) LoadURL(ctx context.Context, url string) error {
	if err := d.ctxPage(ctx).Timeout(d.timeout).Navigate(url); err != nil {
		return snapshoterr.Wrap(snapshoterr.KindNavigation, "navigate to "+url, err)
	}
	if err := d.page.Context(ctx).WaitLoad(); err != nil {
		return snapshoterr.Wrap(snapshoterr.KindNavigation, "wait for load", err)
	}
	return nil
}

func (d *rodDriver) EvaluateScript(ctx context.Context, script string) (string, error) {
	res, err := d.ctxPage(ctx).Evaluate(&rod.EvalOptions{JS: script})
	if err != nil {
		return "", snapshoterr.Wrap(snapshoterr.KindDriver, "evaluate script", err)
	}
	return res.Value.String(), nil
}

func (d *rodDriver) FetchDOMHTML(ctx context.Context) (string, error) {
	html, err := d.ctxPage(ctx).HTML()
	if err != nil {
		return "", snapshoterr.Wrap(snapshoterr.KindDriver, "fetch DOM HTML", err)
	}
	return html, nil
}

// selectorFor builds a best-effort CSS selector from a DomLocator. This is
// the one place the core crosses into driver-specific reacquisition; a live
// id/name match is preferred, falling back to the structural path's tag.
func selectorFor(loc semantic.DomLocator) string {
	if loc.ID != "" {
		return "#" + cssEscape(loc.ID)
	}
	if loc.Name != "" {
		return fmt.Sprintf("[name=%q]", loc.Name)
	}
	return loc.Tag
}

func cssEscape(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '"' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

func (d *rodDriver) resolve(ctx context.Context, loc semantic.DomLocator) (*rod.Element, error) {
	el, err := d.ctxPage(ctx).Timeout(d.timeout).Element(selectorFor(loc))
	if err != nil {
		return nil, snapshoterr.Wrap(snapshoterr.KindElementStale, "resolve locator", err)
	}
	return el, nil
}

func (d *rodDriver) Click(ctx context.Context, loc semantic.DomLocator) error {
	el, err := d.resolve(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return snapshoterr.Wrap(snapshoterr.KindDriver, "click", err)
	}
	return nil
}

func (d *rodDriver) TypeText(ctx context.Context, loc semantic.DomLocator, text string) error {
	el, err := d.resolve(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(text); err != nil {
		return snapshoterr.Wrap(snapshoterr.KindDriver, "type text", err)
	}
	return nil
}

func (d *rodDriver) SelectOption(ctx context.Context, loc semantic.DomLocator, value string) error {
	el, err := d.resolve(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.Select([]string{value}, true, rod.SelectorTypeText); err != nil {
		if err2 := el.Select([]string{value}, true, rod.SelectorTypeCSSSector); err2 != nil {
			return snapshoterr.Wrap(snapshoterr.KindDriver, "select option", err)
		}
	}
	return nil
}

func (d *rodDriver) ScrollBy(ctx context.Context, dx, dy int) error {
	_, err := d.EvaluateScript(ctx, fmt.Sprintf("window.scrollBy(%d, %d)", dx, dy))
	return err
}

func (d *rodDriver) ScrollToLocator(ctx context.Context, loc semantic.DomLocator) error {
	el, err := d.resolve(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.ScrollIntoView(); err != nil {
		return snapshoterr.Wrap(snapshoterr.KindDriver, "scroll into view", err)
	}
	return nil
}

func (d *rodDriver) GetCookies(ctx context.Context) ([]store.Cookie, error) {
	res, err := proto.NetworkGetCookies{}.Call(d.ctxPage(ctx))
	if err != nil {
		return nil, snapshoterr.Wrap(snapshoterr.KindDriver, "get cookies", err)
	}
	out := make([]store.Cookie, 0, len(res.Cookies))
	for _, c := range res.Cookies {
		out = append(out, store.Cookie{
			Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path,
			Expires: time.Unix(int64(c.Expires), 0), Secure: c.Secure, HTTPOnly: c.HTTPOnly,
		})
	}
	return out, nil
}

func (d *rodDriver) SetCookies(ctx context.Context, cookies []store.Cookie) error {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		// Expires is left at zero value (session cookie); the auth store
		// re-applies cookies at the start of a session, where a fresh
		// expiry is more useful than whatever was captured at save time.
		params = append(params, &proto.NetworkCookieParam{
			Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path,
			Secure: c.Secure, HTTPOnly: c.HTTPOnly,
		})
	}
	if len(params) == 0 {
		return nil
	}
	if err := d.ctxPage(ctx).SetCookies(params); err != nil {
		return snapshoterr.Wrap(snapshoterr.KindDriver, "set cookies", err)
	}
	return nil
}

func (d *rodDriver) Screenshot(ctx context.Context, fullPage bool, annotate map[uint32]semantic.DomLocator) ([]byte, error) {
	if len(annotate) > 0 {
		if err := d.drawAnnotations(ctx, annotate); err != nil {
			return nil, err
		}
		defer d.clearAnnotations(ctx)
	}
	var data []byte
	var err error
	if fullPage {
		data, err = d.ctxPage(ctx).Screenshot(true, nil)
	} else {
		data, err = d.ctxPage(ctx).Screenshot(false, nil)
	}
	if err != nil {
		return nil, snapshoterr.Wrap(snapshoterr.KindDriver, "screenshot", err)
	}
	return data, nil
}

func (d *rodDriver) drawAnnotations(ctx context.Context, annotate map[uint32]semantic.DomLocator) error {
	for ref, loc := range annotate {
		script := fmt.Sprintf(`(() => {
			const el = document.querySelector(%q);
			if (!el) return;
			el.style.outline = '2px solid red';
			const label = document.createElement('div');
			label.textContent = '@e%d';
			label.style.cssText = 'position:absolute;background:red;color:white;font-size:10px;z-index:999999;';
			const r = el.getBoundingClientRect();
			label.style.left = (r.left + window.scrollX) + 'px';
			label.style.top = (r.top + window.scrollY - 14) + 'px';
			label.setAttribute('data-pagesense-annotation', '1');
			document.body.appendChild(label);
		})()`, selectorFor(loc), ref)
		_, _ = d.EvaluateScript(ctx, script)
	}
	return nil
}

func (d *rodDriver) clearAnnotations(ctx context.Context) {
	_, _ = d.EvaluateScript(ctx, `document.querySelectorAll('[data-pagesense-annotation]').forEach(e => e.remove())`)
}

func (d *rodDriver) CurrentURL() string {
	info, err := d.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (d *rodDriver) Title(ctx context.Context) (string, error) {
	info, err := d.ctxPage(ctx).Info()
	if err != nil {
		return "", snapshoterr.Wrap(snapshoterr.KindDriver, "page title", err)
	}
	return info.Title, nil
}

func (d *rodDriver) Close(ctx context.Context) error {
	return d.page.Close()
}
