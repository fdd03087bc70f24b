package mcp

import (
	"context"
	"time"

	"pagesense/internal/browser"
)

// QueryFactsTool implements query_facts(query) against the supplemental fact log.
type QueryFactsTool struct{ sessions *browser.SessionManager }

func (t *QueryFactsTool) Name() string { return "query_facts" }
func (t *QueryFactsTool) Description() string {
	return "Run a read-only query against the supplemental fact log built up from navigation and interaction events."
}
func (t *QueryFactsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"required":   []string{"query"},
		"properties": map[string]interface{}{"query": map[string]interface{}{"type": "string"}},
	}
}
func (t *QueryFactsTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	results, err := t.sessions.Facts().Query(ctx, getStringArg(args, "query"))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"results": results}, nil
}

// AwaitFactTool implements await_fact(predicate, timeout_ms).
type AwaitFactTool struct{ sessions *browser.SessionManager }

func (t *AwaitFactTool) Name() string { return "await_fact" }
func (t *AwaitFactTool) Description() string {
	return "Poll for at least one fact matching predicate, up to timeout_ms."
}
func (t *AwaitFactTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"predicate"},
		"properties": map[string]interface{}{
			"predicate":  map[string]interface{}{"type": "string"},
			"timeout_ms": map[string]interface{}{"type": "integer"},
		},
	}
}
func (t *AwaitFactTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	timeout := time.Duration(getIntArg(args, "timeout_ms", 5000)) * time.Millisecond
	facts, err := t.sessions.Facts().AwaitFact(ctx, getStringArg(args, "predicate"), timeout)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"facts": facts}, nil
}
