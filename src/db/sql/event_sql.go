package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tally-server/src/db"
	"tally-server/src/models"
)

// CreateEvent inserts the event and attaches the chosen line items to it in
// one transaction. Only the caller's own unattached line items are eligible.
func CreateEvent(ctx context.Context, pool *pgxpool.Pool, event *models.Event, lineItemIDs []string) (*models.Event, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var eventID int
	err = tx.QueryRow(ctx, `
		INSERT INTO events (user_id, name, category_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`, event.UserID, event.Name, event.CategoryID).Scan(&eventID)
	if err != nil {
		return nil, err
	}

	if len(lineItemIDs) > 0 {
		cmd, err := tx.Exec(ctx, `
			UPDATE line_items SET event_id = $1
			WHERE id = ANY($2) AND user_id = $3 AND event_id IS NULL
		`, eventID, lineItemIDs, event.UserID)
		if err != nil {
			return nil, err
		}
		if int(cmd.RowsAffected()) != len(lineItemIDs) {
			return nil, fmt.Errorf("some line items are missing or already grouped into an event")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	db.ClearAllLineItemCaches()
	return GetEventByID(ctx, pool, event.UserID, eventID)
}

const eventColumns = `
	e.id, e.user_id, e.name, e.category_id, c.name, e.created_at, e.updated_at`

func GetEventByID(ctx context.Context, pool *pgxpool.Pool, userID, eventID int) (*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		LEFT JOIN categories c ON e.category_id = c.id
		WHERE e.id = $1 AND e.user_id = $2
	`
	var e models.Event
	err := pool.QueryRow(ctx, query, eventID, userID).
		Scan(&e.ID, &e.UserID, &e.Name, &e.CategoryID, &e.CategoryName, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("event not found")
	}
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, `SELECT id FROM line_items WHERE event_id = $1 ORDER BY date, id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		e.LineItemIDs = append(e.LineItemIDs, id)
	}
	return &e, rows.Err()
}

func GetAllEventsForUser(ctx context.Context, pool *pgxpool.Pool, userID int) ([]models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		LEFT JOIN categories c ON e.category_id = c.id
		WHERE e.user_id = $1
		ORDER BY e.created_at DESC
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		err := rows.Scan(&e.ID, &e.UserID, &e.Name, &e.CategoryID, &e.CategoryName, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func UpdateEvent(ctx context.Context, pool *pgxpool.Pool, event *models.Event) (*models.Event, error) {
	cmd, err := pool.Exec(ctx, `
		UPDATE events SET name = $1, category_id = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
	`, event.Name, event.CategoryID, event.ID, event.UserID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, fmt.Errorf("event not found")
	}
	return GetEventByID(ctx, pool, event.UserID, event.ID)
}

// DeleteEvent removes the event; its line items are detached (event_id set
// to NULL by the FK), never deleted.
func DeleteEvent(ctx context.Context, pool *pgxpool.Pool, userID, eventID int) error {
	cmd, err := pool.Exec(ctx, `DELETE FROM events WHERE id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("event not found")
	}
	db.ClearAllLineItemCaches()
	return nil
}
