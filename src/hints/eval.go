package hints

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tally-server/src/models"
)

// evalContext carries either one line item (scalar evaluation, and per-item
// evaluation inside all_match) or the full selection (aggregate evaluation).
type evalContext struct {
	item  *models.LineItem
	items []models.LineItem
}

// EvalScalar evaluates the expression against a single line item.
func (c *CompiledExpr) EvalScalar(item models.LineItem) (bool, error) {
	if c.mode != ModeScalar {
		return false, &EvalError{Msg: "aggregate expression needs a selection of line items, got a single item"}
	}
	v, err := eval(c.root, evalContext{item: &item})
	if err != nil {
		return false, err
	}
	return v.Bool, nil
}

// EvalSet evaluates the expression against a non-empty selection.
func (c *CompiledExpr) EvalSet(items []models.LineItem) (bool, error) {
	if len(items) == 0 {
		return false, &EvalError{Msg: "selection is empty"}
	}
	if c.scalarRefs {
		return false, &EvalError{Msg: "per-item expression is ambiguous over a selection of line items"}
	}
	v, err := eval(c.root, evalContext{items: items})
	if err != nil {
		return false, err
	}
	return v.Bool, nil
}

func eval(n node, ctx evalContext) (Value, error) {
	switch n := n.(type) {
	case *literalNode:
		return n.val, nil

	case *fieldNode:
		if ctx.item == nil {
			return Value{}, &EvalError{Msg: fmt.Sprintf("field %s read outside all_match during aggregate evaluation", n.name)}
		}
		return resolveField(n.name, ctx.item)

	case *notNode:
		v, err := eval(n.x, ctx)
		if err != nil {
			return Value{}, err
		}
		return boolValue(!v.Bool), nil

	case *binaryNode:
		switch n.op {
		case "&&", "||":
			return evalLogical(n, ctx)
		default:
			return evalComparison(n, ctx)
		}

	case *containsNode:
		target, err := eval(n.target, ctx)
		if err != nil {
			return Value{}, err
		}
		arg, err := eval(n.arg, ctx)
		if err != nil {
			return Value{}, err
		}
		// Case-insensitive on both sides; this is the documented behavior of
		// contains in the rule editor help and must not change.
		ok := strings.Contains(strings.ToLower(target.Str), strings.ToLower(arg.Str))
		return boolValue(ok), nil

	case *callNode:
		return evalCall(n, ctx)
	}
	return Value{}, &EvalError{Msg: "unsupported expression node"}
}

func evalLogical(n *binaryNode, ctx evalContext) (Value, error) {
	l, err := eval(n.l, ctx)
	if err != nil {
		return Value{}, err
	}
	// Short circuit.
	if n.op == "&&" && !l.Bool {
		return boolValue(false), nil
	}
	if n.op == "||" && l.Bool {
		return boolValue(true), nil
	}
	r, err := eval(n.r, ctx)
	if err != nil {
		return Value{}, err
	}
	return boolValue(r.Bool), nil
}

func evalComparison(n *binaryNode, ctx evalContext) (Value, error) {
	l, err := eval(n.l, ctx)
	if err != nil {
		return Value{}, err
	}
	r, err := eval(n.r, ctx)
	if err != nil {
		return Value{}, err
	}
	if l.Kind != r.Kind {
		return Value{}, &EvalError{Msg: fmt.Sprintf("cannot compare a %s to a %s", l.Kind, r.Kind)}
	}
	switch l.Kind {
	case KindNumber:
		cmp := l.Num.Cmp(r.Num)
		switch n.op {
		case "==":
			return boolValue(cmp == 0), nil
		case "!=":
			return boolValue(cmp != 0), nil
		case ">":
			return boolValue(cmp > 0), nil
		case "<":
			return boolValue(cmp < 0), nil
		case ">=":
			return boolValue(cmp >= 0), nil
		case "<=":
			return boolValue(cmp <= 0), nil
		}
	case KindString:
		switch n.op {
		case "==":
			return boolValue(l.Str == r.Str), nil
		case "!=":
			return boolValue(l.Str != r.Str), nil
		}
	case KindBool:
		switch n.op {
		case "==":
			return boolValue(l.Bool == r.Bool), nil
		case "!=":
			return boolValue(l.Bool != r.Bool), nil
		}
	}
	return Value{}, &EvalError{Msg: fmt.Sprintf("operator %s is not defined for %s operands", n.op, l.Kind)}
}

func evalCall(n *callNode, ctx evalContext) (Value, error) {
	if ctx.items == nil {
		return Value{}, &EvalError{Msg: fmt.Sprintf("%s needs a selection of line items", n.name)}
	}
	switch n.name {
	case "sum":
		field := n.arg.(*fieldNode)
		total := decimal.Zero
		for i := range ctx.items {
			v, err := resolveField(field.name, &ctx.items[i])
			if err != nil {
				return Value{}, err
			}
			total = total.Add(v.Num)
		}
		return numberValue(total), nil
	case "all_match":
		for i := range ctx.items {
			v, err := eval(n.arg, evalContext{item: &ctx.items[i]})
			if err != nil {
				return Value{}, err
			}
			if !v.Bool {
				return boolValue(false), nil
			}
		}
		return boolValue(true), nil
	}
	return Value{}, &EvalError{Msg: fmt.Sprintf("unknown function %q", n.name)}
}
