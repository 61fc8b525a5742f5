package timecode

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0:15", 15},
		{"1:05.2", 65.2},
		{"0:42.7", 42.7},
		{"12:00", 720},
		{" 2:30 ", 150},
		{"", 0},
		{":", 0},
		{"abc:10", 10},
		{"1:xyz", 60},
		{"3", 180},
		{"1:05:30", 65},
		{"0:15.3:9", 15.3},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Parse(tt.in)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		seconds     float64
		withDecimal bool
		want        string
	}{
		{15.3, true, "0:15.3"},
		{65.2, true, "1:05.2"},
		{5, false, "0:05"},
		{65.9, false, "1:05"},
		{600, false, "10:00"},
		{59.96, true, "1:00.0"},
		{-4, false, "0:00"},
		{math.NaN(), true, "0:00.0"},
	}
	for _, tt := range tests {
		if got := Format(tt.seconds, tt.withDecimal); got != tt.want {
			t.Errorf("Format(%v, %v) = %q, want %q", tt.seconds, tt.withDecimal, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"0:00", "0:15", "1:05", "9:59", "42:07"} {
		if got := Format(Parse(s), false); got != s {
			t.Errorf("Format(Parse(%q)) = %q", s, got)
		}
	}
	for _, s := range []string{"0:15.3", "0:42.7", "1:05.2", "1:38.5", "10:00.1"} {
		if got := Format(Parse(s), true); got != s {
			t.Errorf("Format(Parse(%q), true) = %q", s, got)
		}
	}
	for _, secs := range []float64{0, 0.1, 15.3, 65.25, 3599.9} {
		back := Parse(Format(secs, true))
		if math.Abs(back-secs) > 0.05+1e-9 {
			t.Errorf("Parse(Format(%v)) = %v, outside one decimal", secs, back)
		}
	}
}
