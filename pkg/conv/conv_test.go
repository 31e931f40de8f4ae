package conv

import (
	"reflect"
	"testing"
)

func TestSliceAnyToString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"nil", nil, nil},
		{"strings", []string{"a", "b"}, []string{"a", "b"}},
		{"mixed", []any{"a", 12, 3.0, true}, []string{"a", "12", "3"}},
		{"not a slice", "a", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SliceAnyToString(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SliceAnyToString(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestConfigGet(t *testing.T) {
	m := map[string]any{"key": "hot", "n": 3, "f": 4.0, "s": "7", "bad": "x"}
	if got := ConfigGet(m, "key", ""); got != "hot" {
		t.Errorf("ConfigGet(key) = %q", got)
	}
	if got := ConfigGet(m, "n", ""); got != "" {
		t.Errorf("ConfigGet(n) with wrong type = %q, want default", got)
	}
	if got := ConfigGet[string](nil, "key", "d"); got != "d" {
		t.Errorf("ConfigGet(nil map) = %q", got)
	}

	tests := map[string]int64{"n": 3, "f": 4, "s": 7, "bad": -1, "missing": -1}
	for key, want := range tests {
		if got := ConfigGetInt64(m, key, -1); got != want {
			t.Errorf("ConfigGetInt64(%s) = %d, want %d", key, got, want)
		}
	}
}
