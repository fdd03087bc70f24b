package mcp

import (
	"context"
	"time"

	"pagesense/internal/browser"
	"pagesense/internal/diff"
	"pagesense/internal/semantic"
	"pagesense/internal/serialize"
	"pagesense/internal/taskcontext"
)

func snapshotResult(tabID string, snap *semantic.PageSnapshot) map[string]interface{} {
	return map[string]interface{}{
		"tab_id": tabID,
		"text":   serialize.Text(browser.SerializeHeader(*snap), snap.Root),
	}
}

// NavigateTool implements navigate(url, tab?).
type NavigateTool struct{ sessions *browser.SessionManager }

func (t *NavigateTool) Name() string        { return "navigate" }
func (t *NavigateTool) Description() string { return "Load a URL in a tab and return its snapshot." }
func (t *NavigateTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"url"},
		"properties": map[string]interface{}{
			"url": map[string]interface{}{"type": "string"},
			"tab": map[string]interface{}{"type": "string"},
		},
	}
}
func (t *NavigateTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	snap, err := t.sessions.Navigate(ctx, getStringArg(args, "tab"), getStringArg(args, "url"))
	if err != nil {
		return nil, err
	}
	return snapshotResult(getStringArg(args, "tab"), snap), nil
}

// SnapshotTool implements snapshot(tab?).
type SnapshotTool struct{ sessions *browser.SessionManager }

func (t *SnapshotTool) Name() string { return "snapshot" }
func (t *SnapshotTool) Description() string {
	return "Return the tab's current semantic snapshot, re-running the pipeline only if the DOM changed."
}
func (t *SnapshotTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"tab": map[string]interface{}{"type": "string"}},
	}
}
func (t *SnapshotTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	snap, err := t.sessions.Snapshot(ctx, getStringArg(args, "tab"))
	if err != nil {
		return nil, err
	}
	return snapshotResult(getStringArg(args, "tab"), snap), nil
}

// PageDiffTool implements page_diff(tab?).
type PageDiffTool struct{ sessions *browser.SessionManager }

func (t *PageDiffTool) Name() string { return "page_diff" }
func (t *PageDiffTool) Description() string {
	return "Re-snapshot the tab and return the diff against the snapshot it replaces."
}
func (t *PageDiffTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"tab": map[string]interface{}{"type": "string"}},
	}
}
func (t *PageDiffTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	changes, snap, err := t.sessions.PageDiff(ctx, getStringArg(args, "tab"))
	if err != nil {
		return nil, err
	}
	if changes == nil {
		return snapshotResult(getStringArg(args, "tab"), snap), nil
	}
	result := diff.Cap(changes, diff.MaxDiffEntries)
	return map[string]interface{}{
		"tab_id":        getStringArg(args, "tab"),
		"text":          result.Text(),
		"total_changes": result.TotalChanges,
	}, nil
}

// FocusedSnapshotTool implements focused_snapshot(tab?).
type FocusedSnapshotTool struct{ sessions *browser.SessionManager }

func (t *FocusedSnapshotTool) Name() string { return "focused_snapshot" }
func (t *FocusedSnapshotTool) Description() string {
	return "Return the tab's current snapshot filtered by its declared task context."
}
func (t *FocusedSnapshotTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"tab": map[string]interface{}{"type": "string"}},
	}
}
func (t *FocusedSnapshotTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	root, snap, err := t.sessions.FocusedSnapshot(getStringArg(args, "tab"))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"tab_id": getStringArg(args, "tab"),
		"text":   serialize.Text(browser.SerializeHeader(snap), root),
	}, nil
}

// SetTaskContextTool implements set_task_context.
type SetTaskContextTool struct{ sessions *browser.SessionManager }

func (t *SetTaskContextTool) Name() string { return "set_task_context" }
func (t *SetTaskContextTool) Description() string {
	return "Declare a relevance filter narrowing subsequent focused_snapshot calls."
}
func (t *SetTaskContextTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"tab":              map[string]interface{}{"type": "string"},
			"task":             map[string]interface{}{"type": "string"},
			"focus_roles":      map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"interactive_only": map[string]interface{}{"type": "boolean"},
			"max_nodes":        map[string]interface{}{"type": "integer"},
		},
	}
}
func (t *SetTaskContextTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	focusRoles := map[semantic.AriaRole]bool{}
	if raw, ok := args["focus_roles"].([]interface{}); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				focusRoles[semantic.AriaRole(s)] = true
			}
		}
	}
	tc := taskcontext.Context{
		Task:            getStringArg(args, "task"),
		FocusRoles:      focusRoles,
		InteractiveOnly: getBoolArg(args, "interactive_only", false),
		MaxNodes:        uint32(getIntArg(args, "max_nodes", 0)),
	}
	if err := t.sessions.SetTaskContext(getStringArg(args, "tab"), tc); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

// ClearTaskContextTool implements clear_task_context.
type ClearTaskContextTool struct{ sessions *browser.SessionManager }

func (t *ClearTaskContextTool) Name() string        { return "clear_task_context" }
func (t *ClearTaskContextTool) Description() string { return "Remove any task context filter on the tab." }
func (t *ClearTaskContextTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"tab": map[string]interface{}{"type": "string"}},
	}
}
func (t *ClearTaskContextTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if err := t.sessions.ClearTaskContext(getStringArg(args, "tab")); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

// WaitForChangesTool implements wait_for_changes(timeout_ms).
type WaitForChangesTool struct{ sessions *browser.SessionManager }

func (t *WaitForChangesTool) Name() string { return "wait_for_changes" }
func (t *WaitForChangesTool) Description() string {
	return "Block until the tab's DOM mutates since the last action, or the timeout elapses."
}
func (t *WaitForChangesTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"tab":        map[string]interface{}{"type": "string"},
			"timeout_ms": map[string]interface{}{"type": "integer"},
		},
	}
}
func (t *WaitForChangesTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	timeout := time.Duration(getIntArg(args, "timeout_ms", 5000)) * time.Millisecond
	changed, err := t.sessions.WaitForChanges(ctx, getStringArg(args, "tab"), timeout)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"changed": changed}, nil
}
