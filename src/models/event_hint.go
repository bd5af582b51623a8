package models

import "time"

// EventHint is a stored, ordered rule: a boolean expression over line item
// fields plus the event name/category to pre-fill when it matches.
// DisplayOrder is dense and zero-based per user; lower = higher priority.
type EventHint struct {
	ID                int       `json:"id"`
	UserID            int       `json:"user_id"`
	Name              string    `json:"name"`
	CelExpression     string    `json:"cel_expression"`
	PrefillName       string    `json:"prefill_name"`
	PrefillCategoryID *int      `json:"prefill_category_id"`
	PrefillCategory   *string   `json:"prefill_category"`
	IsActive          bool      `json:"is_active"`
	DisplayOrder      int       `json:"display_order"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// EventHintPatch is a partial update: nil pointers leave the column alone.
// PrefillCategorySet distinguishes "set the category to NULL" from "don't
// touch the category".
type EventHintPatch struct {
	Name               *string
	CelExpression      *string
	PrefillName        *string
	PrefillCategoryID  *int
	PrefillCategorySet bool
	IsActive           *bool
}
