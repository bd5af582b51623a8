package hints

import (
	"log"
	"sort"

	"tally-server/src/models"
)

// MatchResult carries the prefill payload of the first matching hint, or
// Matched == false when nothing applies. No-match is not an error.
type MatchResult struct {
	Matched           bool   `json:"matched"`
	HintID            int    `json:"hint_id,omitempty"`
	PrefillName       string `json:"prefill_name,omitempty"`
	PrefillCategoryID *int   `json:"prefill_category_id,omitempty"`
}

// MatchOne finds the first active hint whose expression matches a single
// line item, in ascending display order.
func MatchOne(eventHints []models.EventHint, item models.LineItem) MatchResult {
	return match(eventHints, func(c *CompiledExpr) (bool, error) {
		return c.EvalScalar(item)
	})
}

// MatchSet is MatchOne for a multi-selected set of line items.
func MatchSet(eventHints []models.EventHint, items []models.LineItem) MatchResult {
	return match(eventHints, func(c *CompiledExpr) (bool, error) {
		return c.EvalSet(items)
	})
}

// match is pure with respect to the hints: it never mutates them, and a hint
// that fails to compile or evaluate is logged and skipped so one broken rule
// cannot abort the whole pass.
func match(eventHints []models.EventHint, evaluate func(*CompiledExpr) (bool, error)) MatchResult {
	ordered := make([]models.EventHint, len(eventHints))
	copy(ordered, eventHints)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})

	for _, h := range ordered {
		if !h.IsActive {
			continue
		}
		compiled, err := Compile(h.CelExpression)
		if err != nil {
			log.Printf("ERROR: Event hint %d (%s) no longer compiles, skipping: %v", h.ID, h.Name, err)
			continue
		}
		ok, err := evaluate(compiled)
		if err != nil {
			log.Printf("ERROR: Event hint %d (%s) failed to evaluate, skipping: %v", h.ID, h.Name, err)
			continue
		}
		if ok {
			return MatchResult{
				Matched:           true,
				HintID:            h.ID,
				PrefillName:       h.PrefillName,
				PrefillCategoryID: h.PrefillCategoryID,
			}
		}
	}
	return MatchResult{}
}
