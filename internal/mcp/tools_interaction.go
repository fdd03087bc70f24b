package mcp

import (
	"context"

	"pagesense/internal/browser"
	"pagesense/internal/diff"
)

// afterInteraction returns a refreshed snapshot, or a diff against the
// pre-action state when return_diff is set (§4.8).
func afterInteraction(ctx context.Context, sessions *browser.SessionManager, tabID string, returnDiff bool) (interface{}, error) {
	if returnDiff {
		changes, snap, err := sessions.PageDiff(ctx, tabID)
		if err != nil {
			return nil, err
		}
		if changes == nil {
			return snapshotResult(tabID, snap), nil
		}
		result := diff.Cap(changes, diff.MaxDiffEntries)
		return map[string]interface{}{"tab_id": tabID, "text": result.Text(), "total_changes": result.TotalChanges}, nil
	}
	snap, err := sessions.Snapshot(ctx, tabID)
	if err != nil {
		return nil, err
	}
	return snapshotResult(tabID, snap), nil
}

// ClickTool implements click(ref).
type ClickTool struct{ sessions *browser.SessionManager }

func (t *ClickTool) Name() string        { return "click" }
func (t *ClickTool) Description() string { return "Click the element named by ref." }
func (t *ClickTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"ref"},
		"properties": map[string]interface{}{
			"ref":         map[string]interface{}{"type": "integer"},
			"tab":         map[string]interface{}{"type": "string"},
			"return_diff": map[string]interface{}{"type": "boolean"},
		},
	}
}
func (t *ClickTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	tab := getStringArg(args, "tab")
	if err := t.sessions.Click(ctx, tab, getUintArg(args, "ref", 0)); err != nil {
		return nil, err
	}
	return afterInteraction(ctx, t.sessions, tab, getBoolArg(args, "return_diff", false))
}

// TypeTextTool implements type_text(ref, text).
type TypeTextTool struct{ sessions *browser.SessionManager }

func (t *TypeTextTool) Name() string        { return "type_text" }
func (t *TypeTextTool) Description() string { return "Type text into the element named by ref." }
func (t *TypeTextTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"ref", "text"},
		"properties": map[string]interface{}{
			"ref":         map[string]interface{}{"type": "integer"},
			"text":        map[string]interface{}{"type": "string"},
			"tab":         map[string]interface{}{"type": "string"},
			"return_diff": map[string]interface{}{"type": "boolean"},
		},
	}
}
func (t *TypeTextTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	tab := getStringArg(args, "tab")
	ref := getUintArg(args, "ref", 0)
	text := getStringArg(args, "text")
	if err := t.sessions.TypeText(ctx, tab, ref, text); err != nil {
		return nil, err
	}
	return afterInteraction(ctx, t.sessions, tab, getBoolArg(args, "return_diff", false))
}

// SelectOptionTool implements select_option(ref, value).
type SelectOptionTool struct{ sessions *browser.SessionManager }

func (t *SelectOptionTool) Name() string { return "select_option" }
func (t *SelectOptionTool) Description() string {
	return "Select an option by value in the <select> named by ref."
}
func (t *SelectOptionTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"ref", "value"},
		"properties": map[string]interface{}{
			"ref":         map[string]interface{}{"type": "integer"},
			"value":       map[string]interface{}{"type": "string"},
			"tab":         map[string]interface{}{"type": "string"},
			"return_diff": map[string]interface{}{"type": "boolean"},
		},
	}
}
func (t *SelectOptionTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	tab := getStringArg(args, "tab")
	ref := getUintArg(args, "ref", 0)
	value := getStringArg(args, "value")
	if err := t.sessions.SelectOption(ctx, tab, ref, value); err != nil {
		return nil, err
	}
	return afterInteraction(ctx, t.sessions, tab, getBoolArg(args, "return_diff", false))
}

// ScrollDownTool implements scroll_down.
type ScrollDownTool struct{ sessions *browser.SessionManager }

func (t *ScrollDownTool) Name() string        { return "scroll_down" }
func (t *ScrollDownTool) Description() string { return "Scroll the viewport down by amount pixels (default 600)." }
func (t *ScrollDownTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"tab":    map[string]interface{}{"type": "string"},
			"amount": map[string]interface{}{"type": "integer"},
		},
	}
}
func (t *ScrollDownTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	amount := getIntArg(args, "amount", 600)
	if err := t.sessions.ScrollBy(ctx, getStringArg(args, "tab"), 0, amount); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

// ScrollUpTool implements scroll_up.
type ScrollUpTool struct{ sessions *browser.SessionManager }

func (t *ScrollUpTool) Name() string        { return "scroll_up" }
func (t *ScrollUpTool) Description() string { return "Scroll the viewport up by amount pixels (default 600)." }
func (t *ScrollUpTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"tab":    map[string]interface{}{"type": "string"},
			"amount": map[string]interface{}{"type": "integer"},
		},
	}
}
func (t *ScrollUpTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	amount := getIntArg(args, "amount", 600)
	if err := t.sessions.ScrollBy(ctx, getStringArg(args, "tab"), 0, -amount); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

// ScrollToRefTool implements scroll_to_ref(ref).
type ScrollToRefTool struct{ sessions *browser.SessionManager }

func (t *ScrollToRefTool) Name() string        { return "scroll_to_ref" }
func (t *ScrollToRefTool) Description() string { return "Scroll the element named by ref into view." }
func (t *ScrollToRefTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"ref"},
		"properties": map[string]interface{}{
			"ref": map[string]interface{}{"type": "integer"},
			"tab": map[string]interface{}{"type": "string"},
		},
	}
}
func (t *ScrollToRefTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	ref := getUintArg(args, "ref", 0)
	if err := t.sessions.ScrollToRef(ctx, getStringArg(args, "tab"), ref); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}
