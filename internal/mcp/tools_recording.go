package mcp

import (
	"context"

	"pagesense/internal/browser"
)

// StartRecordingTool implements start_recording(name, domain?).
type StartRecordingTool struct{ sessions *browser.SessionManager }

func (t *StartRecordingTool) Name() string        { return "start_recording" }
func (t *StartRecordingTool) Description() string { return "Begin buffering subsequent tool invocations on the tab." }
func (t *StartRecordingTool) InputSchema() map[string]interface{} {
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
func (t *StartRecordingTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	err := t.sessions.StartRecording(getStringArg(args, "tab"), getStringArg(args, "name"), getStringArg(args, "domain"))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

// StopRecordingTool implements stop_recording().
type StopRecordingTool struct{ sessions *browser.SessionManager }

func (t *StopRecordingTool) Name() string        { return "stop_recording" }
func (t *StopRecordingTool) Description() string { return "End the active recording and persist it." }
func (t *StopRecordingTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"tab": map[string]interface{}{"type": "string"}},
	}
}
func (t *StopRecordingTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if err := t.sessions.StopRecording(getStringArg(args, "tab")); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

// ReplayRecordingTool implements replay_recording(name, domain?).
type ReplayRecordingTool struct{ sessions *browser.SessionManager }

func (t *ReplayRecordingTool) Name() string { return "replay_recording" }
func (t *ReplayRecordingTool) Description() string {
	return "Re-dispatch a saved recording's steps against the tab, re-resolving each ref against the live snapshot."
}
func (t *ReplayRecordingTool) InputSchema() map[string]interface{} {
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
func (t *ReplayRecordingTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	err := t.sessions.ReplayRecording(ctx, getStringArg(args, "tab"), getStringArg(args, "name"), getStringArg(args, "domain"))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}

// ListRecordingsTool implements list_recordings().
type ListRecordingsTool struct{ sessions *browser.SessionManager }

func (t *ListRecordingsTool) Name() string                        { return "list_recordings" }
func (t *ListRecordingsTool) Description() string                 { return "List saved recording names." }
func (t *ListRecordingsTool) InputSchema() map[string]interface{} { return map[string]interface{}{"type": "object"} }
func (t *ListRecordingsTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	names, err := t.sessions.ListRecordings()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"recordings": names}, nil
}

// DeleteRecordingTool implements delete_recording(name, domain?).
type DeleteRecordingTool struct{ sessions *browser.SessionManager }

func (t *DeleteRecordingTool) Name() string        { return "delete_recording" }
func (t *DeleteRecordingTool) Description() string { return "Delete a saved recording." }
func (t *DeleteRecordingTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"name"},
		"properties": map[string]interface{}{
			"name":   map[string]interface{}{"type": "string"},
			"domain": map[string]interface{}{"type": "string"},
		},
	}
}
func (t *DeleteRecordingTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if err := t.sessions.DeleteRecording(getStringArg(args, "name"), getStringArg(args, "domain")); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true}, nil
}
