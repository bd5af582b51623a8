package db

import "fmt"

// hintOrderChanges maps hint id -> new display_order for a reorder request.
// The requested list must contain exactly the existing ids, each once;
// otherwise the whole reorder is rejected with ErrHintSetMismatch. Ids whose
// position is unchanged are omitted from the result.
func hintOrderChanges(existingIDs, requestedIDs []int) (map[int]int, error) {
	if len(requestedIDs) != len(existingIDs) {
		return nil, fmt.Errorf("%w: got %d ids, have %d hints", ErrHintSetMismatch, len(requestedIDs), len(existingIDs))
	}

	existing := make(map[int]int, len(existingIDs)) // id -> current order
	for order, id := range existingIDs {
		existing[id] = order
	}

	changes := make(map[int]int)
	seen := make(map[int]bool, len(requestedIDs))
	for order, id := range requestedIDs {
		current, ok := existing[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown hint id %d", ErrHintSetMismatch, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: hint id %d listed twice", ErrHintSetMismatch, id)
		}
		seen[id] = true
		if current != order {
			changes[id] = order
		}
	}
	return changes, nil
}
