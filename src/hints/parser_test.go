package hints

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAcceptsWellFormedExpressions(t *testing.T) {
	exprs := []string{
		`description.contains("spotify")`,
		`"SPOTIFY USA".contains(description)`,
		`amount > 0`,
		`amount >= -9.99`,
		`amount == -9.99 && description.contains("spotify")`,
		`payment_method == "Chase Visa" || responsible_party == "Alice"`,
		`!description.contains("refund")`,
		`(description.contains("uber") || description.contains("lyft")) && amount < 0`,
		`sum(amount) == 0`,
		`all_match(description.contains("uber"))`,
		`all_match(amount < 0) && sum(amount) <= -100`,
		`true`,
		`false || true`,
	}
	for _, expr := range exprs {
		_, err := parse(expr)
		require.NoError(t, err, "expression %q", expr)
	}
}

func TestParseErrorsCarryPosition(t *testing.T) {
	cases := []struct {
		expr string
		pos  int
	}{
		{`description.contains("spotify`, 21},
		{`amount = 5`, 7},
		{`amount & true`, 7},
		{`amount > `, 9},
		{`(amount > 5`, 11},
		{`description.startswith("x")`, 12},
		{`amount > 5 extra`, 11},
		{`#`, 0},
		{`amount == 5.`, 10},
	}
	for _, tc := range cases {
		_, err := parse(tc.expr)
		require.Error(t, err, "expression %q", tc.expr)
		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr), "expression %q: got %T", tc.expr, err)
		assert.Equal(t, tc.pos, parseErr.Pos, "expression %q", tc.expr)
	}
}

func TestParsePrecedence(t *testing.T) {
	// a || b && c parses as a || (b && c).
	n, err := parse(`true || false && false`)
	require.NoError(t, err)
	or, ok := n.(*binaryNode)
	require.True(t, ok)
	assert.Equal(t, "||", or.op)
	and, ok := or.r.(*binaryNode)
	require.True(t, ok)
	assert.Equal(t, "&&", and.op)

	// ! binds tighter than &&.
	n, err = parse(`!true && false`)
	require.NoError(t, err)
	and, ok = n.(*binaryNode)
	require.True(t, ok)
	assert.Equal(t, "&&", and.op)
	_, ok = and.l.(*notNode)
	assert.True(t, ok)
}

func TestParseStringEscapes(t *testing.T) {
	n, err := parse(`description.contains("say \"hi\" \\ bye")`)
	require.NoError(t, err)
	contains, ok := n.(*containsNode)
	require.True(t, ok)
	lit, ok := contains.arg.(*literalNode)
	require.True(t, ok)
	assert.Equal(t, `say "hi" \ bye`, lit.val.Str)
}

func TestParseNegativeNumberLiteral(t *testing.T) {
	n, err := parse(`amount == -9.99`)
	require.NoError(t, err)
	cmp, ok := n.(*binaryNode)
	require.True(t, ok)
	lit, ok := cmp.r.(*literalNode)
	require.True(t, ok)
	assert.Equal(t, KindNumber, lit.val.Kind)
	assert.Equal(t, "-9.99", lit.val.Num.String())
}
