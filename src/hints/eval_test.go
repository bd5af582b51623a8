package hints

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally-server/src/models"
)

// item builds a line item for evaluation tests. Optional trailing arguments
// are payment method and responsible party.
func item(description, amount string, rest ...string) models.LineItem {
	li := models.LineItem{
		Description: description,
		Amount:      decimal.RequireFromString(amount),
	}
	if len(rest) > 0 {
		li.PaymentMethod = rest[0]
	}
	if len(rest) > 1 {
		li.ResponsibleParty = rest[1]
	}
	return li
}

func evalScalar(t *testing.T, expr string, li models.LineItem) bool {
	t.Helper()
	compiled, err := Compile(expr)
	require.NoError(t, err)
	got, err := compiled.EvalScalar(li)
	require.NoError(t, err)
	return got
}

func evalSet(t *testing.T, expr string, items []models.LineItem) bool {
	t.Helper()
	compiled, err := Compile(expr)
	require.NoError(t, err)
	got, err := compiled.EvalSet(items)
	require.NoError(t, err)
	return got
}

func TestContainsIsCaseInsensitive(t *testing.T) {
	expr := `description.contains("spotify")`
	for _, desc := range []string{"SPOTIFY USA", "Spotify Premium", "my spotify bill"} {
		assert.True(t, evalScalar(t, expr, item(desc, "-9.99")), "description %q", desc)
	}
	assert.False(t, evalScalar(t, expr, item("Coffee Shop", "-5")))

	// Case-insensitive in both directions, and on both operands.
	assert.True(t, evalScalar(t, `description.contains("SPOTIFY")`, item("my spotify bill", "-9.99")))
	assert.True(t, evalScalar(t, `"SPOTIFY USA HOLDINGS".contains(description)`, item("spotify usa", "-9.99")))
}

func TestScalarFieldComparisons(t *testing.T) {
	li := item("Monthly rent", "1850.00", "Chase Checking", "Alice")
	cases := []struct {
		expr string
		want bool
	}{
		{`amount == 1850`, true},
		{`amount == 1850.00`, true},
		{`amount != 1850`, false},
		{`amount > 1000`, true},
		{`amount >= 1850`, true},
		{`amount < 1850`, false},
		{`amount <= 1850`, true},
		{`payment_method == "Chase Checking"`, true},
		{`payment_method == "chase checking"`, false},
		{`responsible_party != "Bob"`, true},
		{`description == "Monthly rent"`, true},
		{`amount > 0 && responsible_party == "Alice"`, true},
		{`amount < 0 || payment_method.contains("chase")`, true},
		{`!(amount < 0) && !description.contains("refund")`, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, evalScalar(t, tc.expr, li), "expression %q", tc.expr)
	}
}

func TestDecimalComparisonIsExact(t *testing.T) {
	// 0.1 + 0.2 drifts in binary floating point; it must not here.
	items := []models.LineItem{item("a", "0.1"), item("b", "0.2"), item("c", "-0.3")}
	assert.True(t, evalSet(t, `sum(amount) == 0`, items))
}

func TestSumAmount(t *testing.T) {
	transfer := []models.LineItem{item("a", "50"), item("b", "-30"), item("c", "-20")}
	assert.True(t, evalSet(t, `sum(amount) == 0`, transfer))

	skewed := []models.LineItem{item("a", "50"), item("b", "-30"), item("c", "-19.99")}
	assert.False(t, evalSet(t, `sum(amount) == 0`, skewed))
	assert.True(t, evalSet(t, `sum(amount) == 0.01`, skewed))
}

func TestAllMatch(t *testing.T) {
	rides := []models.LineItem{
		item("UBER TRIP 123", "-14.50"),
		item("Uber Eats", "-22.10"),
		item("uber pending", "-8.00"),
	}
	assert.True(t, evalSet(t, `all_match(description.contains("uber"))`, rides))

	rides[1] = item("Lyft ride", "-22.10")
	assert.False(t, evalSet(t, `all_match(description.contains("uber"))`, rides))

	assert.True(t, evalSet(t, `all_match(amount < 0)`, rides))
	assert.True(t, evalSet(t, `all_match(amount < 0) && sum(amount) < -40`, rides))
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	li := item("x", "1")
	assert.False(t, evalScalar(t, `false && description.contains("x")`, li))
	assert.True(t, evalScalar(t, `true || description.contains("nope")`, li))
}

func TestEvalModeMismatchIsAnEvalError(t *testing.T) {
	aggregate, err := Compile(`sum(amount) == 0`)
	require.NoError(t, err)
	_, err = aggregate.EvalScalar(item("x", "0"))
	require.Error(t, err)
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)

	scalar, err := Compile(`description.contains("x")`)
	require.NoError(t, err)
	_, err = scalar.EvalSet([]models.LineItem{item("x", "1"), item("y", "2")})
	require.Error(t, err)
	require.ErrorAs(t, err, &evalErr)

	_, err = aggregate.EvalSet(nil)
	require.Error(t, err, "empty selection is a guarded precondition")
}

func TestLiteralOnlyExpressionWorksInBothModes(t *testing.T) {
	compiled, err := Compile(`true`)
	require.NoError(t, err)
	got, err := compiled.EvalScalar(item("x", "1"))
	require.NoError(t, err)
	assert.True(t, got)
	got, err = compiled.EvalSet([]models.LineItem{item("x", "1")})
	require.NoError(t, err)
	assert.True(t, got)
}
