package mcp

import (
	"context"

	"pagesense/internal/browser"
)

// SaveAuthTool implements the auth-save tool: capture the tab's cookies under a named profile.
type SaveAuthTool struct{ sessions *browser.SessionManager }

func (t *SaveAuthTool) Name() string        { return "save_auth" }
func (t *SaveAuthTool) Description() string { return "Save the tab's cookies as a named auth profile." }
func (t *SaveAuthTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"name"},
		"properties": map[string]interface{}{
			"tab":    map[string]interface{}{"type": "string"},
			"name":   map[string]interface{}{"type": "string"},
			"domain": map[string]interface{}{"type": "string"},
		},
	}
}
func (t *SaveAuthTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	err := t.sessions.SaveAuth(ctx, getStringArg(args, "tab"), getStringArg(args, "name"), getStringArg(args, "domain"))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

// LoadAuthTool implements the auth-load tool: restore a named profile's cookies into the tab.
type LoadAuthTool struct{ sessions *browser.SessionManager }

func (t *LoadAuthTool) Name() string        { return "load_auth" }
func (t *LoadAuthTool) Description() string { return "Restore a named auth profile's cookies into the tab." }
func (t *LoadAuthTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"name"},
		"properties": map[string]interface{}{
			"tab":    map[string]interface{}{"type": "string"},
			"name":   map[string]interface{}{"type": "string"},
			"domain": map[string]interface{}{"type": "string"},
		},
	}
}
func (t *LoadAuthTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	err := t.sessions.LoadAuth(ctx, getStringArg(args, "tab"), getStringArg(args, "name"), getStringArg(args, "domain"))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

// ListAuthTool implements the auth-list tool.
type ListAuthTool struct{ sessions *browser.SessionManager }

func (t *ListAuthTool) Name() string                        { return "list_auth" }
func (t *ListAuthTool) Description() string                 { return "List saved auth profile names." }
func (t *ListAuthTool) InputSchema() map[string]interface{} { return map[string]interface{}{"type": "object"} }
func (t *ListAuthTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	names, err := t.sessions.ListAuth()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"profiles": names}, nil
}

// DeleteAuthTool implements the auth-delete tool.
type DeleteAuthTool struct{ sessions *browser.SessionManager }

func (t *DeleteAuthTool) Name() string        { return "delete_auth" }
func (t *DeleteAuthTool) Description() string { return "Delete a saved auth profile." }
func (t *DeleteAuthTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"name"},
		"properties": map[string]interface{}{
			"name":   map[string]interface{}{"type": "string"},
			"domain": map[string]interface{}{"type": "string"},
		},
	}
}
func (t *DeleteAuthTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if err := t.sessions.DeleteAuth(getStringArg(args, "name"), getStringArg(args, "domain")); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}
