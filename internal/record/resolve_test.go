package record

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFindFirst_InsertionOrderWins(t *testing.T) {
	r := New("EquipName", "Pump 1", "_name", "pump-1", "displayName", "P1")

	got, ok := FindFirst(r, "NAME")
	if !ok {
		t.Fatal("expected a match")
	}
	if got != "Pump 1" {
		t.Errorf("FindFirst = %v, want %q", got, "Pump 1")
	}

	reordered := New("displayName", "P1", "EquipName", "Pump 1")
	got, _ = FindFirst(reordered, "name")
	if got != "P1" {
		t.Errorf("FindFirst on reordered record = %v, want %q", got, "P1")
	}
}

func TestFindFirst_Absent(t *testing.T) {
	r := New("unit", "kW")
	if v, ok := FindFirst(r, "kind"); ok {
		t.Errorf("FindFirst = %v, true; want absent", v)
	}
}

func TestFindFirst_IncludesReservedKeys(t *testing.T) {
	r := New("_metadata", New("_name", "x"), "unit", "kW")
	if _, ok := FindFirst(r, "meta"); !ok {
		t.Error("FindFirst should scan every key, including reserved ones")
	}
}

func TestFindAll_ExcludesReserved(t *testing.T) {
	r := New(
		"_metadata_name", "hidden",
		"_name", "Collection",
		"constructor", "hidden",
		"equipName", "AHU",
		"_prototypeName", "hidden",
		"Name", "Other",
	)

	want := []Pair{
		{Key: "_name", Value: "Collection"},
		{Key: "equipName", Value: "AHU"},
		{Key: "Name", Value: "Other"},
	}
	if diff := cmp.Diff(want, FindAll(r, "name")); diff != "" {
		t.Errorf("FindAll mismatch (-want +got):\n%s", diff)
	}
}

func TestFindAll_NoMatch(t *testing.T) {
	if got := FindAll(New("a", 1.0), "equip"); len(got) != 0 {
		t.Errorf("FindAll = %v, want empty", got)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name        string
		rec         Record
		isTelemetry bool
		want        string
	}{
		{
			name: "name pattern first",
			rec:  New("description", "desc", "navName", "Sensor A"),
			want: "Sensor A",
		},
		{
			name:        "telemetry falls back to desc",
			rec:         New("description", "Supply temp", "unit", "C"),
			isTelemetry: true,
			want:        "Supply temp",
		},
		{
			name: "desc ignored outside telemetry",
			rec:  New("description", "Supply temp", "_id", "1"),
			want: Unnamed,
		},
		{
			name: "empty name value falls through",
			rec:  New("_name", "", "_shortName", "short"),
			want: "short",
		},
		{
			name: "nothing matches",
			rec:  New("_id", "abc"),
			want: Unnamed,
		},
		{
			name:        "telemetry with empty name uses desc",
			rec:         New("name", "", "desc", "Return temp"),
			isTelemetry: true,
			want:        "Return temp",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName(tt.rec, tt.isTelemetry); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplayName_Deterministic(t *testing.T) {
	r := New("zName", "Z", "aName", "A", "desc", "D")
	first := DisplayName(r, true)
	for range 20 {
		if got := DisplayName(r, true); got != first {
			t.Fatalf("DisplayName changed between runs: %q then %q", first, got)
		}
	}
	if first != "Z" {
		t.Errorf("DisplayName = %q, want %q", first, "Z")
	}
}

func TestFilteredProperties(t *testing.T) {
	r := New(
		"_id", "1",
		"_metadata", New("a", 1.0),
		"metadata", "x",
		"prototype", "x",
		"__proto__", "x",
		"constructor", "x",
		"_prototypeRef", "x",
		"unit", "kW",
	)
	want := New("_id", "1", "unit", "kW")
	if diff := cmp.Diff(want, FilteredProperties(r)); diff != "" {
		t.Errorf("FilteredProperties mismatch (-want +got):\n%s", diff)
	}
}

func TestIsReserved(t *testing.T) {
	reserved := []string{"_metadata", "_metadataX", "_prototype", "_prototypeY", "metadata", "prototype", "__proto__", "constructor"}
	for _, k := range reserved {
		if !IsReserved(k) {
			t.Errorf("IsReserved(%q) = false, want true", k)
		}
	}
	regular := []string{"_id", "Metadata", "meta", "unitMetadata", "_name"}
	for _, k := range regular {
		if IsReserved(k) {
			t.Errorf("IsReserved(%q) = true, want false", k)
		}
	}
}
