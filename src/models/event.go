package models

import "time"

// Event is a user-created grouping of line items representing one logical
// financial occurrence (a purchase, a subscription charge, a transfer).
type Event struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	Name         string    `json:"name"`
	CategoryID   *int      `json:"category_id"`
	CategoryName *string   `json:"category_name"`
	LineItemIDs  []string  `json:"line_item_ids,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
