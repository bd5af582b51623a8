package hints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally-server/src/models"
)

func intPtr(i int) *int { return &i }

func hint(id, order int, active bool, expr, prefillName string, categoryID *int) models.EventHint {
	return models.EventHint{
		ID:                id,
		Name:              prefillName + " rule",
		CelExpression:     expr,
		PrefillName:       prefillName,
		PrefillCategoryID: categoryID,
		IsActive:          active,
		DisplayOrder:      order,
	}
}

func TestFirstMatchWins(t *testing.T) {
	eventHints := []models.EventHint{
		hint(1, 0, true, `description.contains("spotify")`, "Spotify", intPtr(4)),
		hint(2, 1, true, `amount < 0`, "Any expense", intPtr(9)),
	}
	got := MatchOne(eventHints, item("SPOTIFY USA", "-9.99"))
	require.True(t, got.Matched)
	assert.Equal(t, 1, got.HintID)
	assert.Equal(t, "Spotify", got.PrefillName)
	require.NotNil(t, got.PrefillCategoryID)
	assert.Equal(t, 4, *got.PrefillCategoryID)

	// Priority comes from display_order, not slice position.
	reversed := []models.EventHint{eventHints[1], eventHints[0]}
	got = MatchOne(reversed, item("SPOTIFY USA", "-9.99"))
	require.True(t, got.Matched)
	assert.Equal(t, 1, got.HintID)
}

func TestMatchStopsAtFirstTrueRule(t *testing.T) {
	eventHints := []models.EventHint{
		hint(1, 0, true, `false`, "Never", nil),
		hint(2, 1, true, `true`, "Winner", nil),
		hint(3, 2, true, `true`, "Shadowed", nil),
	}
	evaluated := 0
	got := match(eventHints, func(c *CompiledExpr) (bool, error) {
		evaluated++
		return c.EvalScalar(item("x", "1"))
	})
	require.True(t, got.Matched)
	assert.Equal(t, 2, got.HintID)
	assert.Equal(t, 2, evaluated, "rules after the first match must not be evaluated")
}

func TestInactiveHintsAreSkipped(t *testing.T) {
	eventHints := []models.EventHint{
		hint(1, 0, false, `description.contains("spotify")`, "Spotify", nil),
		hint(2, 1, true, `description.contains("usa")`, "Fallback", nil),
	}
	got := MatchOne(eventHints, item("SPOTIFY USA", "-9.99"))
	require.True(t, got.Matched)
	assert.Equal(t, 2, got.HintID)
}

func TestBrokenHintIsSkippedNotFatal(t *testing.T) {
	eventHints := []models.EventHint{
		hint(1, 0, true, `description.contains(`, "Unparsable", nil),
		hint(2, 1, true, `sum(amount) == 0`, "Wrong mode for one item", nil),
		hint(3, 2, true, `description.contains("coffee")`, "Coffee", nil),
	}
	got := MatchOne(eventHints, item("Coffee Shop", "-5"))
	require.True(t, got.Matched)
	assert.Equal(t, 3, got.HintID)
}

// The worked example from the rule editor docs: a scalar subscription rule
// and an aggregate transfer rule living side by side.
func TestScenarioSpotifyAndTransfer(t *testing.T) {
	eventHints := []models.EventHint{
		hint(1, 0, true, `description.contains("spotify")`, "Spotify", intPtr(11)),
		hint(2, 1, true, `sum(amount) == 0`, "Transfer", intPtr(12)),
	}

	got := MatchOne(eventHints, item("SPOTIFY USA", "-9.99"))
	require.True(t, got.Matched)
	assert.Equal(t, "Spotify", got.PrefillName)

	got = MatchSet(eventHints, []models.LineItem{item("Venmo out", "50"), item("Venmo in", "-50")})
	require.True(t, got.Matched)
	assert.Equal(t, "Transfer", got.PrefillName)
	require.NotNil(t, got.PrefillCategoryID)
	assert.Equal(t, 12, *got.PrefillCategoryID)

	got = MatchOne(eventHints, item("Coffee Shop", "-5"))
	assert.False(t, got.Matched)
	assert.Empty(t, got.PrefillName)
}

func TestMatchDoesNotMutateInput(t *testing.T) {
	eventHints := []models.EventHint{
		hint(2, 1, true, `true`, "B", nil),
		hint(1, 0, true, `false`, "A", nil),
	}
	MatchOne(eventHints, item("x", "1"))
	assert.Equal(t, 2, eventHints[0].ID, "matcher must sort a copy, not the caller's slice")
}
