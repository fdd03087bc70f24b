package mangle

// macroSource is a derived-rule library layered on top of the base fact
// schema so callers don't have to hand-write the same joins themselves:
// repeated interactions with one element, URL revisits within a tab, and
// snapshot churn (a tab whose DOM hash keeps changing).
const macroSource = `
Decl repeated_interaction(TabId, Ref).

repeated_interaction(Tab, Ref) :-
    interacted(Tab, _, Ref, T1),
    interacted(Tab, _, Ref, T2),
    T1 != T2.

Decl revisited_url(TabId, Url).

revisited_url(Tab, Url) :-
    navigated(Tab, Url, T1),
    navigated(Tab, Url, T2),
    T1 != T2.

Decl churned_snapshot(TabId).

churned_snapshot(Tab) :-
    snapshot_taken(Tab, Hash1, _, T1),
    snapshot_taken(Tab, Hash2, _, T2),
    T1 != T2,
    Hash1 != Hash2.
`

// LoadMacros layers the built-in derived-rule library on top of the base
// schema. Call it after LoadSchema; a no-op when the engine is disabled.
func (e *Engine) LoadMacros() error {
	if !e.cfg.Enable {
		return nil
	}
	return e.AddRule(macroSource)
}
