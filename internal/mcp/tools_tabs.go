package mcp

import (
	"context"

	"pagesense/internal/browser"
)

// OpenTabTool implements open_tab(url).
type OpenTabTool struct{ sessions *browser.SessionManager }

func (t *OpenTabTool) Name() string        { return "open_tab" }
func (t *OpenTabTool) Description() string { return "Open a new tab, optionally navigating it, and focus it." }
func (t *OpenTabTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"url": map[string]interface{}{"type": "string"}},
	}
}
func (t *OpenTabTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	summary, err := t.sessions.OpenTab(ctx, getStringArg(args, "url"))
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ListTabsTool implements list_tabs().
type ListTabsTool struct{ sessions *browser.SessionManager }

func (t *ListTabsTool) Name() string                             { return "list_tabs" }
func (t *ListTabsTool) Description() string                      { return "List every open tab's metadata." }
func (t *ListTabsTool) InputSchema() map[string]interface{}      { return map[string]interface{}{"type": "object"} }
func (t *ListTabsTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return map[string]interface{}{"tabs": t.sessions.ListTabs()}, nil
}

// SwitchTabTool implements switch_tab(id).
type SwitchTabTool struct{ sessions *browser.SessionManager }

func (t *SwitchTabTool) Name() string        { return "switch_tab" }
func (t *SwitchTabTool) Description() string { return "Change which tab subsequent tab-less tool calls act on." }
func (t *SwitchTabTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"id"},
		"properties": map[string]interface{}{"id": map[string]interface{}{"type": "string"}},
	}
}
func (t *SwitchTabTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if err := t.sessions.SwitchTab(getStringArg(args, "id")); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

// CloseTabTool implements close_tab(id).
type CloseTabTool struct{ sessions *browser.SessionManager }

func (t *CloseTabTool) Name() string        { return "close_tab" }
func (t *CloseTabTool) Description() string { return "Close a tab and release its driver handle." }
func (t *CloseTabTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"id"},
		"properties": map[string]interface{}{"id": map[string]interface{}{"type": "string"}},
	}
}
func (t *CloseTabTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if err := t.sessions.CloseTab(ctx, getStringArg(args, "id")); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}
