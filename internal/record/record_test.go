package record

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUnmarshalJSON_PreservesOrder(t *testing.T) {
	var r Record
	data := `{"zeta":1,"alpha":"a","_tsMetadata":{"_sourceId":"s-1","b":true},"list":[1,{"x":null}]}`
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	want := []string{"zeta", "alpha", "_tsMetadata", "list"}
	if diff := cmp.Diff(want, r.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	src, ok := r.Lookup("_tsMetadata._sourceId")
	if !ok || src != "s-1" {
		t.Errorf("Lookup(_tsMetadata._sourceId) = %v, %v; want s-1, true", src, ok)
	}

	list, _ := r.Get("list")
	items, ok := list.([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("list = %#v, want 2-element slice", list)
	}
	if _, ok := items[1].(Record); !ok {
		t.Errorf("nested object decoded as %T, want Record", items[1])
	}
}

func TestMarshalJSON_RoundTripKeepsOrder(t *testing.T) {
	r := New("b", 2.0, "a", "x", "c", New("z", nil, "y", true))
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"b":2,"a":"x","c":{"z":null,"y":true}}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestUnmarshalJSON_RejectsNonObject(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`[1,2]`), &r); err == nil {
		t.Fatal("expected error for JSON array")
	}
}

func TestID(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{"id", New("_id", "a", "_userItemId", "b"), "a"},
		{"user item id fallback", New("_userItemId", "b"), "b"},
		{"none", New("name", "x"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.ID(); got != tt.want {
				t.Errorf("ID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{3.5, "3.5"},
		{12.0, "12"},
		{true, "true"},
		{New("a", 1.0), `{"a":1}`},
		{[]any{1.0, "x"}, `[1,"x"]`},
	}
	for _, tt := range tests {
		if got := Stringify(tt.in); got != tt.want {
			t.Errorf("Stringify(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
