package hints

// The AST is a small tagged union: literal, field reference, unary/binary
// operator, contains call, and aggregate function call. Every node keeps the
// byte offset it was parsed at for error reporting.

type node interface {
	nodePos() int
}

type literalNode struct {
	pos int
	val Value
}

type fieldNode struct {
	pos  int
	name string
}

type notNode struct {
	pos int
	x   node
}

// binaryNode covers the boolean combinators ("&&", "||") and the six
// comparison operators.
type binaryNode struct {
	pos  int
	op   string
	l, r node
}

// containsNode is target.contains(arg); both operands must be string-typed
// and the match is case-insensitive.
type containsNode struct {
	pos    int
	target node
	arg    node
}

// callNode is an aggregate function: sum(amount) or all_match(predicate).
type callNode struct {
	pos  int
	name string
	arg  node
}

func (n *literalNode) nodePos() int  { return n.pos }
func (n *fieldNode) nodePos() int    { return n.pos }
func (n *notNode) nodePos() int      { return n.pos }
func (n *binaryNode) nodePos() int   { return n.pos }
func (n *containsNode) nodePos() int { return n.pos }
func (n *callNode) nodePos() int     { return n.pos }
