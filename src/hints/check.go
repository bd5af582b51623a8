package hints

import "fmt"

// Mode tells what kind of candidate an expression needs: one line item or a
// selection. It is derived once at validation time from a static pass over
// the AST, never re-derived during evaluation.
type Mode int

const (
	// ModeScalar evaluates against a single line item.
	ModeScalar Mode = iota
	// ModeAggregate evaluates against a non-empty selection of line items.
	ModeAggregate
)

func (m Mode) String() string {
	if m == ModeAggregate {
		return "aggregate"
	}
	return "scalar"
}

// CompiledExpr is a parsed and statically checked hint expression, ready to
// evaluate in the mode the check derived.
type CompiledExpr struct {
	root node
	mode Mode

	// scalarRefs is true when the expression reads line item fields outside
	// all_match(...), which makes it meaningless over a selection.
	scalarRefs bool
}

// Compile parses an expression and runs the static checks the evaluator
// relies on: known fields only, matching comparison types, string operands
// for contains, aggregates never nested, and no mixing of per-item field
// reads with aggregate functions.
func Compile(expression string) (*CompiledExpr, error) {
	root, err := parse(expression)
	if err != nil {
		return nil, err
	}
	c := &checker{}
	kind, err := c.typeOf(root, false)
	if err != nil {
		return nil, err
	}
	if kind != KindBool {
		return nil, &ValidationError{Pos: root.nodePos(), Msg: fmt.Sprintf("expression must be a boolean, not a %s", kind)}
	}
	if c.scalarRefs && c.aggregates {
		return nil, &ValidationError{Pos: c.aggregatePos, Msg: "expression mixes per-item fields with aggregate functions; wrap the field reads in all_match(...)"}
	}
	mode := ModeScalar
	if c.aggregates {
		mode = ModeAggregate
	}
	return &CompiledExpr{root: root, mode: mode, scalarRefs: c.scalarRefs}, nil
}

// Validate is the dry-run compile behind the rule editor's Validate action
// and every store write path. It needs no line item to check against.
func Validate(expression string) error {
	_, err := Compile(expression)
	return err
}

// Mode reports the candidate shape the expression requires.
func (c *CompiledExpr) Mode() Mode {
	return c.mode
}

type checker struct {
	scalarRefs   bool
	aggregates   bool
	aggregatePos int
}

func (c *checker) typeOf(n node, insideAllMatch bool) (ValueKind, error) {
	switch n := n.(type) {
	case *literalNode:
		return n.val.Kind, nil

	case *fieldNode:
		kind, ok := fieldKinds[n.name]
		if !ok {
			return 0, &ValidationError{Pos: n.pos, Msg: fmt.Sprintf("unknown field %q; supported fields are description, amount, payment_method, responsible_party", n.name)}
		}
		if !insideAllMatch {
			c.scalarRefs = true
		}
		return kind, nil

	case *notNode:
		kind, err := c.typeOf(n.x, insideAllMatch)
		if err != nil {
			return 0, err
		}
		if kind != KindBool {
			return 0, &ValidationError{Pos: n.pos, Msg: fmt.Sprintf("operator ! needs a boolean, not a %s", kind)}
		}
		return KindBool, nil

	case *binaryNode:
		lk, err := c.typeOf(n.l, insideAllMatch)
		if err != nil {
			return 0, err
		}
		rk, err := c.typeOf(n.r, insideAllMatch)
		if err != nil {
			return 0, err
		}
		switch n.op {
		case "&&", "||":
			if lk != KindBool || rk != KindBool {
				return 0, &ValidationError{Pos: n.pos, Msg: fmt.Sprintf("operator %s needs boolean operands", n.op)}
			}
		case "==", "!=":
			if lk != rk {
				return 0, &ValidationError{Pos: n.pos, Msg: fmt.Sprintf("cannot compare a %s to a %s", lk, rk)}
			}
		default: // > < >= <=
			if lk != KindNumber || rk != KindNumber {
				return 0, &ValidationError{Pos: n.pos, Msg: fmt.Sprintf("operator %s needs numeric operands", n.op)}
			}
		}
		return KindBool, nil

	case *containsNode:
		tk, err := c.typeOf(n.target, insideAllMatch)
		if err != nil {
			return 0, err
		}
		ak, err := c.typeOf(n.arg, insideAllMatch)
		if err != nil {
			return 0, err
		}
		if tk != KindString || ak != KindString {
			return 0, &ValidationError{Pos: n.pos, Msg: "contains needs string operands"}
		}
		return KindBool, nil

	case *callNode:
		switch n.name {
		case "sum":
			if insideAllMatch {
				return 0, &ValidationError{Pos: n.pos, Msg: "sum is not allowed inside all_match"}
			}
			field, ok := n.arg.(*fieldNode)
			if !ok || fieldKinds[field.name] != KindNumber {
				return 0, &ValidationError{Pos: n.pos, Msg: "sum takes a numeric field; use sum(amount)"}
			}
			c.aggregates = true
			c.aggregatePos = n.pos
			return KindNumber, nil
		case "all_match":
			if insideAllMatch {
				return 0, &ValidationError{Pos: n.pos, Msg: "all_match cannot be nested"}
			}
			kind, err := c.typeOf(n.arg, true)
			if err != nil {
				return 0, err
			}
			if kind != KindBool {
				return 0, &ValidationError{Pos: n.pos, Msg: "all_match needs a boolean predicate"}
			}
			c.aggregates = true
			c.aggregatePos = n.pos
			return KindBool, nil
		default:
			return 0, &ValidationError{Pos: n.pos, Msg: fmt.Sprintf("unknown function %q; supported functions are sum and all_match", n.name)}
		}
	}
	return 0, &ValidationError{Pos: n.nodePos(), Msg: "unsupported expression"}
}
