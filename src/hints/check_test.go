package hints

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally-server/src/models"
)

func TestCompileDerivesMode(t *testing.T) {
	cases := []struct {
		expr string
		mode Mode
	}{
		{`description.contains("spotify")`, ModeScalar},
		{`amount < 0 && payment_method == "Venmo"`, ModeScalar},
		{`true`, ModeScalar},
		{`sum(amount) == 0`, ModeAggregate},
		{`all_match(description.contains("uber"))`, ModeAggregate},
		{`all_match(amount < 0) && sum(amount) <= -100`, ModeAggregate},
	}
	for _, tc := range cases {
		compiled, err := Compile(tc.expr)
		require.NoError(t, err, "expression %q", tc.expr)
		assert.Equal(t, tc.mode, compiled.Mode(), "expression %q", tc.expr)
	}
}

func TestValidateRejectsSemanticErrors(t *testing.T) {
	cases := []struct {
		name string
		expr string
	}{
		{"unknown field", `merchant.contains("uber")`},
		{"unknown field in comparison", `category == "Food"`},
		{"unknown function", `avg(amount) > 5`},
		{"string compared to number", `description == 5`},
		{"number compared to string", `amount == "5"`},
		{"ordering on strings", `description > "a"`},
		{"contains on a number", `amount.contains("5")`},
		{"contains with numeric argument", `description.contains(5)`},
		{"not on a number", `!amount`},
		{"and on numbers", `amount && true`},
		{"non-boolean result", `amount`},
		{"non-boolean sum result", `sum(amount)`},
		{"sum of a string field", `sum(description) == 0`},
		{"sum of a literal", `sum(5) == 5`},
		{"mixed scalar and aggregate", `amount > 5 && sum(amount) == 0`},
		{"nested all_match", `all_match(all_match(amount < 0))`},
		{"sum inside all_match", `all_match(sum(amount) == 0)`},
		{"all_match over a number", `all_match(amount)`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.expr)
			require.Error(t, err)
			var valErr *ValidationError
			assert.True(t, errors.As(err, &valErr), "want ValidationError, got %T: %v", err, err)
		})
	}
}

// Validation is a dry-run compile: anything it accepts must evaluate without
// ParseError/ValidationError, and anything it rejects must not be evaluable.
func TestValidateAgreesWithEvaluation(t *testing.T) {
	valid := []string{
		`description.contains("spotify")`,
		`amount <= -0.01 || responsible_party == "Bob"`,
		`sum(amount) == 0`,
		`all_match(payment_method == "Venmo")`,
	}
	for _, expr := range valid {
		require.NoError(t, Validate(expr), "expression %q", expr)
		compiled, err := Compile(expr)
		require.NoError(t, err, "expression %q", expr)
		if compiled.Mode() == ModeScalar {
			_, err = compiled.EvalScalar(item("anything", "0"))
		} else {
			_, err = compiled.EvalSet([]models.LineItem{item("a", "1"), item("b", "-1")})
		}
		require.NoError(t, err, "expression %q", expr)
	}

	invalid := []string{
		`description.contains(`,
		`merchant == "x"`,
		`amount == "5"`,
	}
	for _, expr := range invalid {
		assert.Error(t, Validate(expr), "expression %q", expr)
	}
}
