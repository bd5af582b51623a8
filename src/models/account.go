package models

type Account struct {
	ID             int    `json:"id"`
	ItemID         int    `json:"item_id"`
	AccountID      string `json:"account_id"`
	Name           string `json:"name"`
	Mask           string `json:"mask"`
	Type           string `json:"type"`
	Subtype        string `json:"subtype"`
	CurrentBalance string `json:"current_balance"`
	CreatedAt      string `json:"created_at"`
}
