// Package numfmt formats and parses display numbers for invoice series.
//
// A series pattern contains exactly one maximal run of '#' characters (the
// zero-padding width of the sequence value) and optionally one maximal run of
// '%' characters (2- or 4-digit year). Everything else is literal text.
//
// Example: "FAC-%%%%-####" with sequence 7 in 2026 formats as "FAC-2026-0007".
package numfmt

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPattern is returned for patterns that cannot number anything:
// no '#' run, or multiple disjoint '#' or '%' runs.
var ErrInvalidPattern = errors.New("invalid series pattern")

// maximalRuns returns the start index and length of each maximal run of ch.
func maximalRuns(pattern string, ch byte) [][2]int {
	var runs [][2]int
	for i := 0; i < len(pattern); {
		if pattern[i] != ch {
			i++
			continue
		}
		start := i
		for i < len(pattern) && pattern[i] == ch {
			i++
		}
		runs = append(runs, [2]int{start, i - start})
	}
	return runs
}

// Validate checks that the pattern has exactly one '#' run and at most one
// '%' run. Multiple disjoint runs are rejected rather than silently
// formatting only the first occurrence.
func Validate(pattern string) error {
	seqRuns := maximalRuns(pattern, '#')
	switch len(seqRuns) {
	case 0:
		return fmt.Errorf("%w: no '#' sequence placeholder in %q", ErrInvalidPattern, pattern)
	case 1:
	default:
		return fmt.Errorf("%w: multiple '#' runs in %q", ErrInvalidPattern, pattern)
	}

	if yearRuns := maximalRuns(pattern, '%'); len(yearRuns) > 1 {
		return fmt.Errorf("%w: multiple '%%' runs in %q", ErrInvalidPattern, pattern)
	}

	return nil
}

// SequenceWidth returns the zero-padding width of the pattern's '#' run.
func SequenceWidth(pattern string) (int, error) {
	if err := Validate(pattern); err != nil {
		return 0, err
	}
	return maximalRuns(pattern, '#')[0][1], nil
}

// yearDigits renders the year portion for a '%' run of the given length.
// A run of 4 selects the full year, anything else the last two digits.
func yearDigits(runLen int, now time.Time) string {
	if runLen == 4 {
		return fmt.Sprintf("%04d", now.Year())
	}
	return fmt.Sprintf("%02d", now.Year()%100)
}

// Format renders the display number for a sequence value.
// The sequence value is left-padded with zeros to the '#' run width; values
// wider than the run are never truncated (the output grows).
// The caller injects "now" so that year substitution is testable.
func Format(pattern string, seq int, now time.Time) (string, error) {
	if err := Validate(pattern); err != nil {
		return "", err
	}
	if seq < 0 {
		return "", fmt.Errorf("%w: negative sequence value %d", ErrInvalidPattern, seq)
	}

	var b strings.Builder
	for i := 0; i < len(pattern); {
		switch pattern[i] {
		case '#':
			run := 0
			for i < len(pattern) && pattern[i] == '#' {
				run++
				i++
			}
			fmt.Fprintf(&b, "%0*d", run, seq)
		case '%':
			run := 0
			for i < len(pattern) && pattern[i] == '%' {
				run++
				i++
			}
			b.WriteString(yearDigits(run, now))
		default:
			b.WriteByte(pattern[i])
			i++
		}
	}
	return b.String(), nil
}

// ParseSequence extracts the sequence value from a display number.
//
// Primary strategy: match the display against a regex derived from the
// pattern ('#' run → digit capture, '%' run → fixed-width year digits).
// The capture is (\d+), not a fixed width, so numbers that outgrew the run
// width still parse.
//
// Fallback: displays produced under a historical pattern may not match the
// literal text at all; the sequence is then taken positionally as the last
// digit run in the string. Returns ok=false when nothing parses — callers
// discard such values instead of aborting the scan.
func ParseSequence(pattern, display string) (int, bool) {
	if Validate(pattern) == nil {
		if re, err := patternRegexp(pattern); err == nil {
			if m := re.FindStringSubmatch(display); m != nil {
				if v, err := strconv.Atoi(m[1]); err == nil {
					return v, true
				}
			}
		}
	}

	if m := trailingDigits.FindStringSubmatch(display); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return v, true
		}
	}

	return 0, false
}

var trailingDigits = regexp.MustCompile(`(\d+)\D*$`)

// patternRegexp compiles the pattern into an anchored matcher with a single
// capture group over the sequence digits.
func patternRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`^`)
	for i := 0; i < len(pattern); {
		switch pattern[i] {
		case '#':
			for i < len(pattern) && pattern[i] == '#' {
				i++
			}
			b.WriteString(`(\d+)`)
		case '%':
			run := 0
			for i < len(pattern) && pattern[i] == '%' {
				run++
				i++
			}
			if run == 4 {
				b.WriteString(`\d{4}`)
			} else {
				b.WriteString(`\d{2}`)
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(pattern[i])))
			i++
		}
	}
	b.WriteString(`$`)
	return regexp.Compile(b.String())
}
