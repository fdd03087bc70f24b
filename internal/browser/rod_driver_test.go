package browser

import (
	"strings"
	"testing"

	"pagesense/internal/semantic"
)

func TestSelectorForPrefersIDThenNameThenTag(t *testing.T) {
	cases := []struct {
		name string
		loc  semantic.DomLocator
		want string
	}{
		{"id", semantic.DomLocator{Tag: "input", ID: "email", Name: "email"}, `#email`},
		{"name", semantic.DomLocator{Tag: "input", Name: "email"}, `[name="email"]`},
		{"tag only", semantic.DomLocator{Tag: "button"}, "button"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := selectorFor(tc.loc); got != tc.want {
				t.Errorf("selectorFor(%+v) = %q, want %q", tc.loc, got, tc.want)
			}
		})
	}
}

func TestCSSEscapeEscapesQuotesAndBackslashes(t *testing.T) {
	cases := map[string]string{
		`plain`:       `plain`,
		`has"quote`:   `has\"quote`,
		`back\slash`:  `back\\slash`,
	}
	for in, want := range cases {
		if got := cssEscape(in); got != want {
			t.Errorf("cssEscape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseGeometryRowsDecodesKnownRectsInOrder(t *testing.T) {
	rows := parseGeometryRows(`[[1,2,3,4,1],[0,-100,5,5,0]]`)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !rows[0].Known || rows[0].Rect == nil || !rows[0].Visible {
		t.Errorf("expected row 0 to be known and visible, got %+v", rows[0])
	}
	if rows[0].Rect.X != 1 || rows[0].Rect.Y != 2 || rows[0].Rect.Width != 3 || rows[0].Rect.Height != 4 {
		t.Errorf("unexpected rect for row 0: %+v", rows[0].Rect)
	}
	if !rows[1].Known || rows[1].Visible {
		t.Errorf("expected row 1 to be known and not visible, got %+v", rows[1])
	}
}

func TestParseGeometryRowsReturnsNilOnMalformedJSON(t *testing.T) {
	if rows := parseGeometryRows("not json"); rows != nil {
		t.Errorf("expected nil rows for malformed input, got %v", rows)
	}
}

func TestParseLocatorGeometryRowsLeavesUnmatchedSelectorsUnknown(t *testing.T) {
	rows := parseLocatorGeometryRows(`[[1,2,3,4,1],null]`)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !rows[0].Known {
		t.Error("expected the matched selector's row to be known")
	}
	if rows[1].Known {
		t.Error("expected the unmatched selector's row to stay unknown")
	}
}

func TestLocatorGeometryScriptEmbedsSelectorsAsJSON(t *testing.T) {
	script, err := locatorGeometryScript([]string{"#id", "button"})
	if err != nil {
		t.Fatalf("locatorGeometryScript: %v", err)
	}
	if !strings.Contains(script, `["#id","button"]`) {
		t.Errorf("expected the selector list to appear as a JSON array literal, got: %s", script)
	}
}
