package invoice

import (
	"facturago/pkg/numfmt"
)

// nextSequence returns the lowest sequence value >= 1 absent from used.
//
// Regulatory numbering must have no gaps: when an earlier slot was freed
// (a finalize retried after a conflict, or a draft abandoned before ever
// occupying the final space), the lowest free slot is reused instead of
// leaving a hole. An empty set yields 1; a gapless set {1..n} yields n+1.
func nextSequence(used map[int]struct{}) int {
	for n := 1; ; n++ {
		if _, ok := used[n]; !ok {
			return n
		}
	}
}

// usedSequences extracts the numeric values occupied by final display
// numbers in a series. Values that fail to parse (e.g. numbers stamped
// under a pattern that no longer matches anything) are discarded rather
// than aborting the scan.
func usedSequences(pattern string, displays []string) map[int]struct{} {
	used := make(map[int]struct{}, len(displays))
	for _, d := range displays {
		if v, ok := numfmt.ParseSequence(pattern, d); ok {
			used[v] = struct{}{}
		}
	}
	return used
}
