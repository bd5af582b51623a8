package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one ingested payment-processor record. Amounts follow the
// processor convention: positive = money out, negative = money in.
type LineItem struct {
	ID               string          `json:"id"`
	UserID           int             `json:"user_id"`
	EventID          *int            `json:"event_id"`
	Date             time.Time       `json:"date"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"payment_method"`
	ResponsibleParty string          `json:"responsible_party"`
	Source           string          `json:"source"`
	CreatedAt        time.Time       `json:"created_at"`
}
