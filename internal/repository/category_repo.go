package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"viralio/internal/model"
)

// MaxCategoriesPerUser caps per-user labels regardless of tier.
const MaxCategoriesPerUser = 20

// ErrCategoryLimitReached is returned when a user already owns the maximum
// number of categories.
var ErrCategoryLimitReached = errors.New("category_limit_reached")

// CategoryRepository defines methods for accessing task categories.
type CategoryRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]model.TaskCategory, error)
	// Create inserts a category unless the user is at the cap; the check
	// and insert happen in one statement.
	Create(ctx context.Context, c *model.TaskCategory) error
	Delete(ctx context.Context, categoryID, userID string) error
}

type categoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo creates a new CategoryRepository.
func NewCategoryRepo(db *sql.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) ListByUserID(ctx context.Context, userID string) ([]model.TaskCategory, error) {
	query := `
		SELECT id, user_id, name, color, created_at
		FROM task_categories
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories for user %s: %w", userID, err)
	}
	defer rows.Close()

	categories := []model.TaskCategory{}
	for rows.Next() {
		var c model.TaskCategory
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepo) Create(ctx context.Context, c *model.TaskCategory) error {
	query := `
		INSERT INTO task_categories (user_id, name, color)
		SELECT $1, $2, $3
		WHERE (SELECT COUNT(*) FROM task_categories WHERE user_id = $1) < $4
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, c.UserID, c.Name, c.Color, MaxCategoriesPerUser).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCategoryLimitReached
		}
		return fmt.Errorf("create category for user %s: %w", c.UserID, err)
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, categoryID, userID string) error {
	// Tasks referencing the category keep existing; the FK is ON DELETE SET NULL.
	query := `DELETE FROM task_categories WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, categoryID, userID)
	if err != nil {
		return fmt.Errorf("delete category %s: %w", categoryID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
