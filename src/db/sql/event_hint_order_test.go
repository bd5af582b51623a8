package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHintOrderChangesAssignsDenseOrder(t *testing.T) {
	existing := []int{10, 11, 12, 13}

	changes, err := hintOrderChanges(existing, []int{13, 10, 12, 11})
	require.NoError(t, err)
	assert.Equal(t, map[int]int{13: 0, 10: 1, 11: 3}, changes, "12 keeps position 2 and is omitted")

	// Resulting orders cover exactly 0..n-1.
	final := map[int]int{10: 0, 11: 1, 12: 2, 13: 3}
	for id, order := range changes {
		final[id] = order
	}
	used := make(map[int]bool)
	for _, order := range final {
		assert.False(t, used[order], "duplicate display_order %d", order)
		assert.GreaterOrEqual(t, order, 0)
		assert.Less(t, order, len(existing))
		used[order] = true
	}
}

func TestHintOrderChangesNoOp(t *testing.T) {
	changes, err := hintOrderChanges([]int{1, 2, 3}, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestHintOrderChangesRejectsMismatchedSets(t *testing.T) {
	existing := []int{1, 2, 3}
	cases := []struct {
		name      string
		requested []int
	}{
		{"missing id", []int{1, 2}},
		{"extra id", []int{1, 2, 3, 4}},
		{"unknown id", []int{1, 2, 99}},
		{"duplicate id", []int{1, 2, 2}},
		{"empty", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := hintOrderChanges(existing, tc.requested)
			require.ErrorIs(t, err, ErrHintSetMismatch)
		})
	}
}
