package hints

import (
	"fmt"

	"tally-server/src/models"
)

// The four line item fields an expression may reference, with their static
// types. Anything else is rejected at validation time, never at resolve time.
var fieldKinds = map[string]ValueKind{
	"description":       KindString,
	"amount":            KindNumber,
	"payment_method":    KindString,
	"responsible_party": KindString,
}

func resolveField(name string, item *models.LineItem) (Value, error) {
	switch name {
	case "description":
		return stringValue(item.Description), nil
	case "amount":
		return numberValue(item.Amount), nil
	case "payment_method":
		return stringValue(item.PaymentMethod), nil
	case "responsible_party":
		return stringValue(item.ResponsibleParty), nil
	}
	// Unreachable when the expression passed static checking.
	return Value{}, &EvalError{Msg: fmt.Sprintf("unsupported field %q", name)}
}
