package numfmt

import (
	"errors"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		seq     int
		want    string
	}{
		{"basic padding", "FAC-####", 1, "FAC-0001"},
		{"padding width respected", "FAC-####", 42, "FAC-0042"},
		{"value wider than run grows", "FAC-##", 12345, "FAC-12345"},
		{"four digit year", "FAC-%%%%-####", 7, "FAC-2026-0007"},
		{"two digit year", "F%%/####", 3, "F26/0003"},
		{"suffix after sequence", "###-A", 9, "009-A"},
		{"single hash", "R#", 5, "R5"},
		{"zero value pads", "INV-###", 0, "INV-000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.pattern, tt.seq, fixedNow)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Format(%q, %d) = %q, want %q", tt.pattern, tt.seq, got, tt.want)
			}
		})
	}
}

func TestFormat_InvalidPatterns(t *testing.T) {
	patterns := []string{
		"FAC-2024",      // no sequence run
		"",              // empty
		"##-##",         // two '#' runs
		"%%-####-%%",    // two '%' runs
		"F%%A%%%%-####", // two '%' runs, mixed widths
	}

	for _, p := range patterns {
		if _, err := Format(p, 1, fixedNow); !errors.Is(err, ErrInvalidPattern) {
			t.Errorf("Format(%q) error = %v, want ErrInvalidPattern", p, err)
		}
	}
}

func TestSequenceWidth(t *testing.T) {
	w, err := SequenceWidth("FAC-%%%%-#####")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 5 {
		t.Errorf("width = %d, want 5", w)
	}

	if _, err := SequenceWidth("no-placeholder"); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	// For any value whose digit count fits the run width, formatting then
	// parsing must return the original value.
	patterns := []string{"FAC-####", "R-%%%%-###", "##/X", "A%%B####C"}
	values := []int{1, 9, 10, 99, 100}

	for _, p := range patterns {
		for _, v := range values {
			display, err := Format(p, v, fixedNow)
			if err != nil {
				t.Fatalf("Format(%q, %d): %v", p, v, err)
			}
			got, ok := ParseSequence(p, display)
			if !ok {
				t.Fatalf("ParseSequence(%q, %q) failed", p, display)
			}
			if got != v {
				t.Errorf("round trip %q value %d: got %d", p, v, got)
			}
		}
	}
}

func TestParseSequence_GrownValue(t *testing.T) {
	// A value that outgrew the run width still parses via the (\d+) capture.
	got, ok := ParseSequence("FAC-##", "FAC-12345")
	if !ok || got != 12345 {
		t.Errorf("got (%d, %v), want (12345, true)", got, ok)
	}
}

func TestParseSequence_HistoricalFormat(t *testing.T) {
	// Display produced under an older pattern: literal text no longer
	// matches, so the trailing digit run is used positionally.
	got, ok := ParseSequence("FAC-%%%%-####", "OLD/0042")
	if !ok || got != 42 {
		t.Errorf("got (%d, %v), want (42, true)", got, ok)
	}
}

func TestParseSequence_Unparseable(t *testing.T) {
	if _, ok := ParseSequence("FAC-####", "no digits here"); ok {
		t.Error("expected ok=false for display without digits")
	}
}

func TestParseSequence_TwoDigitYearNotMistakenForSequence(t *testing.T) {
	// Year digits sit in a fixed-width slot of the matcher; only the
	// sequence run is captured.
	got, ok := ParseSequence("F%%/####", "F26/0003")
	if !ok || got != 3 {
		t.Errorf("got (%d, %v), want (3, true)", got, ok)
	}
}
