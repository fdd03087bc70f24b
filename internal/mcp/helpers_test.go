package mcp

import "testing"

func TestGetStringArg(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		key  string
		want string
	}{
		{"present string", map[string]interface{}{"tab": "t1"}, "tab", "t1"},
		{"missing key", map[string]interface{}{}, "tab", ""},
		{"non-string coerced", map[string]interface{}{"tab": 42}, "tab", "42"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := getStringArg(tc.args, tc.key); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGetIntArg(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		fallback int
		want     int
	}{
		{"float64 from JSON", map[string]interface{}{"n": float64(600)}, 0, 600},
		{"int literal", map[string]interface{}{"n": 12}, 0, 12},
		{"missing uses fallback", map[string]interface{}{}, 600, 600},
		{"wrong type uses fallback", map[string]interface{}{"n": "nope"}, 5, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := getIntArg(tc.args, "n", tc.fallback); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestGetUintArg(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want uint32
	}{
		{"float64 ref from JSON", map[string]interface{}{"ref": float64(17)}, 17},
		{"missing uses fallback", map[string]interface{}{}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := getUintArg(tc.args, "ref", 0); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestGetBoolArg(t *testing.T) {
	if !getBoolArg(map[string]interface{}{"return_diff": true}, "return_diff", false) {
		t.Error("expected true to pass through")
	}
	if getBoolArg(map[string]interface{}{}, "return_diff", false) {
		t.Error("expected missing key to use the fallback")
	}
}

func TestGetUintSliceArg(t *testing.T) {
	args := map[string]interface{}{"annotate": []interface{}{float64(1), float64(2), float64(3)}}
	got := getUintSliceArg(args, "annotate")
	want := []uint32{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}

	if got := getUintSliceArg(map[string]interface{}{}, "annotate"); got != nil {
		t.Errorf("expected nil for a missing key, got %v", got)
	}
}
