package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tally-server/src/db"
	"tally-server/src/models"
)

const lineItemColumns = `
	id, user_id, event_id, date, description, amount, payment_method,
	responsible_party, source, created_at`

func scanLineItem(row pgx.Row) (*models.LineItem, error) {
	var li models.LineItem
	err := row.Scan(&li.ID, &li.UserID, &li.EventID, &li.Date, &li.Description,
		&li.Amount, &li.PaymentMethod, &li.ResponsibleParty, &li.Source, &li.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &li, nil
}

// GetAllLineItems lists the user's line items, newest first. With
// ungroupedOnly set it returns only items not yet attached to an event,
// which is what the review screen shows.
func GetAllLineItems(ctx context.Context, pool *pgxpool.Pool, userID int, ungroupedOnly bool) ([]models.LineItem, error) {
	cacheKey := fmt.Sprintf("line_items:%d:%t", userID, ungroupedOnly)
	if cached, found := db.Cache.Get(cacheKey); found {
		return cached.([]models.LineItem), nil
	}

	query := `SELECT ` + lineItemColumns + ` FROM line_items WHERE user_id = $1`
	if ungroupedOnly {
		query += ` AND event_id IS NULL`
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		li, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *li)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	db.SetLineItemCache(cacheKey, items)
	return items, nil
}

// GetLineItemsByIDs fetches a selection in the order the ids were given,
// which is the order the match candidate set is evaluated in. Every id must
// belong to the user and exist.
func GetLineItemsByIDs(ctx context.Context, pool *pgxpool.Pool, userID int, ids []string) ([]models.LineItem, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("no line item ids given")
	}
	query := `SELECT ` + lineItemColumns + ` FROM line_items WHERE user_id = $1 AND id = ANY($2)`
	rows, err := pool.Query(ctx, query, userID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]models.LineItem, len(ids))
	for rows.Next() {
		li, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		byID[li.ID] = *li
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items := make([]models.LineItem, 0, len(ids))
	for _, id := range ids {
		li, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("line item %s not found", id)
		}
		items = append(items, li)
	}
	return items, nil
}

// CreateLineItem inserts a manually entered line item.
func CreateLineItem(ctx context.Context, pool *pgxpool.Pool, li *models.LineItem) (*models.LineItem, error) {
	li.ID = uuid.NewString()
	if li.Source == "" {
		li.Source = "manual"
	}
	query := `
		INSERT INTO line_items (id, user_id, date, description, amount, payment_method, responsible_party, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + lineItemColumns
	created, err := scanLineItem(pool.QueryRow(ctx, query,
		li.ID, li.UserID, li.Date, li.Description, li.Amount, li.PaymentMethod, li.ResponsibleParty, li.Source))
	if err != nil {
		return nil, err
	}
	db.ClearAllLineItemCaches()
	return created, nil
}

func UpdateLineItem(ctx context.Context, pool *pgxpool.Pool, li *models.LineItem) (*models.LineItem, error) {
	query := `
		UPDATE line_items
		SET description = $1, amount = $2, payment_method = $3, responsible_party = $4, date = $5
		WHERE id = $6 AND user_id = $7
		RETURNING ` + lineItemColumns
	updated, err := scanLineItem(pool.QueryRow(ctx, query,
		li.Description, li.Amount, li.PaymentMethod, li.ResponsibleParty, li.Date, li.ID, li.UserID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("line item not found")
	}
	if err != nil {
		return nil, err
	}
	db.ClearAllLineItemCaches()
	return updated, nil
}

func DeleteLineItem(ctx context.Context, pool *pgxpool.Pool, userID int, id string) error {
	cmd, err := pool.Exec(ctx, `DELETE FROM line_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("line item not found")
	}
	db.ClearAllLineItemCaches()
	return nil
}
