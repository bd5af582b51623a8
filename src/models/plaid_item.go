package models

type PlaidItem struct {
	ID              int    `json:"id"`
	UserID          int64  `json:"user_id"`
	ItemID          string `json:"item_id"`
	InstitutionName string `json:"institution_name"`
	CreatedAt       string `json:"created_at"`
}
