package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextSequence(t *testing.T) {
	tests := []struct {
		name string
		used []int
		want int
	}{
		{"empty set", nil, 1},
		{"gapless", []int{1, 2, 3}, 4},
		{"hole in the middle", []int{1, 3}, 2},
		{"hole at the start", []int{2, 3}, 1},
		{"single high value", []int{5}, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			used := make(map[int]struct{}, len(tc.used))
			for _, v := range tc.used {
				used[v] = struct{}{}
			}
			assert.Equal(t, tc.want, nextSequence(used))
		})
	}
}

func TestUsedSequences(t *testing.T) {
	displays := []string{
		"FAC-0001",
		"FAC-0042",
		"OLD-7",      // stamped under a retired pattern: slot 7 stays occupied
		"FAC-123456", // outgrew the run width
		"VOID",       // nothing numeric: discarded, scan continues
	}

	used := usedSequences("FAC-####", displays)

	assert.Equal(t, map[int]struct{}{1: {}, 42: {}, 7: {}, 123456: {}}, used)
}

func TestUsedSequencesWithYear(t *testing.T) {
	used := usedSequences("F%%-##", []string{"F25-07", "F24-01"})

	// Year digits match any year; both sequences count as occupied.
	assert.Equal(t, map[int]struct{}{7: {}, 1: {}}, used)
}
