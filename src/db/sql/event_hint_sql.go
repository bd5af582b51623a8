package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tally-server/src/db"
	"tally-server/src/hints"
	"tally-server/src/models"
)

// ErrHintSetMismatch is returned when a reorder request's id set does not
// exactly match the user's stored hints. Nothing is applied in that case.
var ErrHintSetMismatch = errors.New("hint ids do not match the stored hint set")

var ErrHintNotFound = errors.New("event hint not found")

const eventHintColumns = `
	h.id, h.user_id, h.name, h.cel_expression, h.prefill_name,
	h.prefill_category_id, c.name, h.is_active, h.display_order,
	h.created_at, h.updated_at`

func scanEventHint(row pgx.Row) (*models.EventHint, error) {
	var h models.EventHint
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.CelExpression, &h.PrefillName,
		&h.PrefillCategoryID, &h.PrefillCategory, &h.IsActive, &h.DisplayOrder,
		&h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// GetAllEventHints returns the user's hints in priority order (ascending
// display_order), with the prefill category name denormalized in.
func GetAllEventHints(ctx context.Context, pool *pgxpool.Pool, userID int) ([]models.EventHint, error) {
	cacheKey := fmt.Sprintf("event_hints:%d", userID)
	if cached, found := db.Cache.Get(cacheKey); found {
		return cached.([]models.EventHint), nil
	}

	query := `
		SELECT ` + eventHintColumns + `
		FROM event_hints h
		LEFT JOIN categories c ON h.prefill_category_id = c.id
		WHERE h.user_id = $1
		ORDER BY h.display_order
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var eventHints []models.EventHint
	for rows.Next() {
		h, err := scanEventHint(rows)
		if err != nil {
			return nil, err
		}
		eventHints = append(eventHints, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	db.SetHintCache(cacheKey, eventHints)
	return eventHints, nil
}

func GetEventHintByID(ctx context.Context, pool *pgxpool.Pool, userID, hintID int) (*models.EventHint, error) {
	query := `
		SELECT ` + eventHintColumns + `
		FROM event_hints h
		LEFT JOIN categories c ON h.prefill_category_id = c.id
		WHERE h.id = $1 AND h.user_id = $2
	`
	h, err := scanEventHint(pool.QueryRow(ctx, query, hintID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrHintNotFound
	}
	return h, err
}

// CreateEventHint validates the expression, then appends the hint at the end
// of the user's priority order. An invalid expression is never stored.
func CreateEventHint(ctx context.Context, pool *pgxpool.Pool, hint *models.EventHint) (*models.EventHint, error) {
	if err := hints.Validate(hint.CelExpression); err != nil {
		return nil, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := lockUserHints(ctx, tx, hint.UserID); err != nil {
		return nil, err
	}

	var hintID int
	err = tx.QueryRow(ctx, `
		INSERT INTO event_hints (user_id, name, cel_expression, prefill_name, prefill_category_id, is_active, display_order)
		VALUES ($1, $2, $3, $4, $5, $6,
			(SELECT COALESCE(MAX(display_order) + 1, 0) FROM event_hints WHERE user_id = $1))
		RETURNING id
	`, hint.UserID, hint.Name, hint.CelExpression, hint.PrefillName, hint.PrefillCategoryID, hint.IsActive).Scan(&hintID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	db.ClearAllHintCaches()
	return GetEventHintByID(ctx, pool, hint.UserID, hintID)
}

// UpdateEventHint applies a partial update. A changed expression is
// re-validated; display_order is never touched here (use Reorder).
func UpdateEventHint(ctx context.Context, pool *pgxpool.Pool, userID, hintID int, patch models.EventHintPatch) (*models.EventHint, error) {
	if patch.CelExpression != nil {
		if err := hints.Validate(*patch.CelExpression); err != nil {
			return nil, err
		}
	}

	sets := []string{"updated_at = NOW()"}
	args := []interface{}{hintID, userID}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.CelExpression != nil {
		add("cel_expression", *patch.CelExpression)
	}
	if patch.PrefillName != nil {
		add("prefill_name", *patch.PrefillName)
	}
	if patch.PrefillCategorySet {
		add("prefill_category_id", patch.PrefillCategoryID)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}

	query := fmt.Sprintf(`UPDATE event_hints SET %s WHERE id = $1 AND user_id = $2`, strings.Join(sets, ", "))
	cmd, err := pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrHintNotFound
	}

	db.ClearAllHintCaches()
	return GetEventHintByID(ctx, pool, userID, hintID)
}

// DeleteEventHint removes the hint and renumbers the remaining ones so
// display_order stays a dense 0..n-1 sequence. The unique constraint on
// (user_id, display_order) is deferred, so the renumber commits atomically.
func DeleteEventHint(ctx context.Context, pool *pgxpool.Pool, userID, hintID int) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockUserHints(ctx, tx, userID); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM event_hints WHERE id = $1 AND user_id = $2`, hintID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrHintNotFound
	}

	_, err = tx.Exec(ctx, `
		UPDATE event_hints h
		SET display_order = t.rn - 1
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY display_order) AS rn
			FROM event_hints
			WHERE user_id = $1
		) t
		WHERE h.id = t.id AND h.display_order <> t.rn - 1
	`, userID)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	db.ClearAllHintCaches()
	return nil
}

// ReorderEventHints assigns display_order = position for the given full id
// list. All-or-nothing: any mismatch with the stored set rejects the call
// and leaves the previous order visible.
func ReorderEventHints(ctx context.Context, pool *pgxpool.Pool, userID int, orderedIDs []int) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockUserHints(ctx, tx, userID); err != nil {
		return err
	}

	rows, err := tx.Query(ctx, `SELECT id FROM event_hints WHERE user_id = $1 ORDER BY display_order`, userID)
	if err != nil {
		return err
	}
	var existingIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		existingIDs = append(existingIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	changes, err := hintOrderChanges(existingIDs, orderedIDs)
	if err != nil {
		return err
	}

	for hintID, order := range changes {
		if _, err := tx.Exec(ctx, `UPDATE event_hints SET display_order = $1, updated_at = NOW() WHERE id = $2`, order, hintID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	db.ClearAllHintCaches()
	return nil
}

// lockUserHints serializes hint mutations per user by locking the owning
// user row. Two concurrent reorders cannot interleave, and reads outside the
// transaction still see the previous fully-formed order.
func lockUserHints(ctx context.Context, tx pgx.Tx, userID int) error {
	var id int
	return tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
}
