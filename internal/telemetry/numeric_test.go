package telemetry

import (
	"math"
	"testing"

	"github.com/xbocquet/twcatele/internal/record"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   float64
		wantOK bool
	}{
		{"float", 3.5, 3.5, true},
		{"int", 7, 7, true},
		{"numeric string", "12", 12, true},
		{"decimal string", "3.5", 3.5, true},
		{"leading space and suffix", "  21.5 C", 21.5, true},
		{"exponent", "1e3", 1000, true},
		{"negative", "-4", -4, true},
		{"leading dot", ".5", 0.5, true},
		{"not a number", "abc", 0, false},
		{"n/a", "N/A", 0, false},
		{"empty", "", 0, false},
		{"nil", nil, 0, false},
		{"true", true, 1, true},
		{"false", false, 0, true},
		{"boolean text", "true", 0, false},
		{"infinity string", "Infinity", 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(-1), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToNumber(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ToNumber(%#v) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ToNumber(%#v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestReadingValue_PatternPriority(t *testing.T) {
	r := record.New("reading", 1.0, "val", 2.0)
	v, ok := ReadingValue(r)
	if !ok || v != 2.0 {
		t.Errorf("ReadingValue = %v, %v; want 2 (val beats reading)", v, ok)
	}

	r = record.New("currentValue", nil, "rawReading", 5.0)
	v, ok = ReadingValue(r)
	if !ok || v != 5.0 {
		t.Errorf("ReadingValue = %v, %v; want 5 (nil values skipped)", v, ok)
	}
}

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		name     string
		readings []record.Record
		want     bool
	}{
		{"empty", nil, false},
		{
			name: "exactly half counts as numeric",
			readings: []record.Record{
				record.New("value", "12"),
				record.New("value", "abc"),
				record.New("value", "7"),
				record.New("value", nil),
			},
			want: true,
		},
		{
			name: "below half",
			readings: []record.Record{
				record.New("value", "12"),
				record.New("value", "abc"),
				record.New("value", "def"),
			},
			want: false,
		},
		{
			name: "all text",
			readings: []record.Record{
				record.New("value", "on"),
				record.New("value", "off"),
			},
			want: false,
		},
		{
			name: "booleans",
			readings: []record.Record{
				record.New("value", true),
				record.New("value", false),
			},
			want: true,
		},
		{
			name:     "single numeric",
			readings: []record.Record{record.New("val", 1.0)},
			want:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNumeric(tt.readings); got != tt.want {
				t.Errorf("IsNumeric() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNumeric_SamplesFirstTen(t *testing.T) {
	var readings []record.Record
	for range 10 {
		readings = append(readings, record.New("value", "text"))
	}
	for range 30 {
		readings = append(readings, record.New("value", 1.0))
	}
	if IsNumeric(readings) {
		t.Error("IsNumeric should only look at the first 10 readings")
	}
}
