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

func CreateCategory(ctx context.Context, pool *pgxpool.Pool, userID int, name string) (*models.Category, error) {
	query := `
		INSERT INTO categories (user_id, name)
		VALUES ($1, $2)
		RETURNING id, user_id, name, created_at
	`
	var c models.Category
	err := pool.QueryRow(ctx, query, userID, name).
		Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	db.ClearAllCategoryCaches()
	return &c, nil
}

func GetAllCategories(ctx context.Context, pool *pgxpool.Pool, userID int) ([]models.Category, error) {
	cacheKey := fmt.Sprintf("categories:%d", userID)
	if cached, found := db.Cache.Get(cacheKey); found {
		return cached.([]models.Category), nil
	}

	query := `
		SELECT id, user_id, name, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY name
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	db.SetCategoryCache(cacheKey, categories)
	return categories, nil
}

func GetCategoryByID(ctx context.Context, pool *pgxpool.Pool, userID, categoryID int) (*models.Category, error) {
	query := `SELECT id, user_id, name, created_at FROM categories WHERE id = $1 AND user_id = $2`
	var c models.Category
	err := pool.QueryRow(ctx, query, categoryID, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("category not found")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func UpdateCategory(ctx context.Context, pool *pgxpool.Pool, userID, categoryID int, name string) (*models.Category, error) {
	query := `
		UPDATE categories SET name = $1
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, name, created_at
	`
	var c models.Category
	err := pool.QueryRow(ctx, query, name, categoryID, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("category not found")
	}
	if err != nil {
		return nil, err
	}
	db.ClearAllCategoryCaches()
	db.ClearAllHintCaches() // cached hints denormalize the category name
	return &c, nil
}

// DeleteCategory removes the category. Hints that prefilled it get their
// prefill_category_id nulled by the FK; events that already used it keep
// nothing either (same FK rule), but the event's own stored name survives.
func DeleteCategory(ctx context.Context, pool *pgxpool.Pool, userID, categoryID int) error {
	cmd, err := pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, categoryID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("category not found")
	}
	db.ClearAllCategoryCaches()
	db.ClearAllHintCaches()
	return nil
}
