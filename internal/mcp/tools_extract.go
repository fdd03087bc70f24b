package mcp

import (
	"context"
	"encoding/base64"

	"pagesense/internal/browser"
	"pagesense/internal/extract"
)

// ExtractTool implements extract(selector?, schema).
type ExtractTool struct{ sessions *browser.SessionManager }

func (t *ExtractTool) Name() string { return "extract" }
func (t *ExtractTool) Description() string {
	return "Bind a JSON Schema against the tab's current snapshot (optionally scoped by selector) and return the matching value."
}
func (t *ExtractTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"schema"},
		"properties": map[string]interface{}{
			"tab":      map[string]interface{}{"type": "string"},
			"selector": map[string]interface{}{"type": "string"},
			"schema":   map[string]interface{}{"type": "object"},
		},
	}
}
func (t *ExtractTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	root, _, err := t.sessions.FocusedSnapshot(getStringArg(args, "tab"))
	if err != nil {
		return nil, err
	}
	schema, _ := args["schema"].(map[string]interface{})
	value, err := extract.Extract(root, getStringArg(args, "selector"), extract.Schema(schema))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"value": value}, nil
}

// ScreenshotTool implements screenshot(full_page?, annotate?).
type ScreenshotTool struct{ sessions *browser.SessionManager }

func (t *ScreenshotTool) Name() string        { return "screenshot" }
func (t *ScreenshotTool) Description() string { return "Capture a PNG screenshot of the tab, optionally annotating refs." }
func (t *ScreenshotTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"tab":       map[string]interface{}{"type": "string"},
			"full_page": map[string]interface{}{"type": "boolean"},
			"annotate":  map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "integer"}},
		},
	}
}
func (t *ScreenshotTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	data, err := t.sessions.Screenshot(ctx, getStringArg(args, "tab"),
		getBoolArg(args, "full_page", false), getUintSliceArg(args, "annotate"))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"image_base64": base64.StdEncoding.EncodeToString(data),
		"format":       "png",
	}, nil
}
