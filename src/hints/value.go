package hints

import "github.com/shopspring/decimal"

type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	}
	return "unknown"
}

// Value is the closed union of types an expression can produce. Amounts are
// exact decimals, never floats.
type Value struct {
	Kind ValueKind
	Str  string
	Num  decimal.Decimal
	Bool bool
}

func stringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

func numberValue(d decimal.Decimal) Value {
	return Value{Kind: KindNumber, Num: d}
}

func boolValue(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}
