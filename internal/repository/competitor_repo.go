package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"viralio/internal/model"
)

// CompetitorRepository defines methods for accessing tracked competitors.
type CompetitorRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]model.Competitor, error)
	GetByID(ctx context.Context, competitorID string) (*model.Competitor, error)
	Create(ctx context.Context, c *model.Competitor) error
	Update(ctx context.Context, c *model.Competitor) error
	Delete(ctx context.Context, competitorID, userID string) error
}

type competitorRepo struct {
	db *sql.DB
}

// NewCompetitorRepo creates a new CompetitorRepository.
func NewCompetitorRepo(db *sql.DB) CompetitorRepository {
	return &competitorRepo{db: db}
}

func (r *competitorRepo) ListByUserID(ctx context.Context, userID string) ([]model.Competitor, error) {
	query := `
		SELECT id, user_id, handle, platform, feed, created_at, updated_at
		FROM competitors
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list competitors for user %s: %w", userID, err)
	}
	defer rows.Close()

	competitors := []model.Competitor{}
	for rows.Next() {
		var c model.Competitor
		var rawFeed []byte
		if err := rows.Scan(&c.ID, &c.UserID, &c.Handle, &c.Platform, &rawFeed, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rawFeed, &c.Feed); err != nil {
			return nil, fmt.Errorf("unmarshal feed for competitor %s: %w", c.ID, err)
		}
		competitors = append(competitors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return competitors, nil
}

func (r *competitorRepo) GetByID(ctx context.Context, competitorID string) (*model.Competitor, error) {
	query := `
		SELECT id, user_id, handle, platform, feed, created_at, updated_at
		FROM competitors
		WHERE id = $1
	`
	var c model.Competitor
	var rawFeed []byte
	err := r.db.QueryRowContext(ctx, query, competitorID).
		Scan(&c.ID, &c.UserID, &c.Handle, &c.Platform, &rawFeed, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch competitor %s: %w", competitorID, err)
	}
	if err := json.Unmarshal(rawFeed, &c.Feed); err != nil {
		return nil, fmt.Errorf("unmarshal feed for competitor %s: %w", c.ID, err)
	}
	return &c, nil
}

func (r *competitorRepo) Create(ctx context.Context, c *model.Competitor) error {
	rawFeed, err := json.Marshal(c.Feed)
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}
	query := `
		INSERT INTO competitors (user_id, handle, platform, feed)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowContext(ctx, query, c.UserID, c.Handle, c.Platform, rawFeed).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("create competitor for user %s: %w", c.UserID, err)
	}
	return nil
}

func (r *competitorRepo) Update(ctx context.Context, c *model.Competitor) error {
	rawFeed, err := json.Marshal(c.Feed)
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}
	query := `
		UPDATE competitors
		SET handle = $3, platform = $4, feed = $5, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`
	if err := r.db.QueryRowContext(ctx, query, c.ID, c.UserID, c.Handle, c.Platform, rawFeed).
		Scan(&c.UpdatedAt); err != nil {
		return fmt.Errorf("update competitor %s: %w", c.ID, err)
	}
	return nil
}

func (r *competitorRepo) Delete(ctx context.Context, competitorID, userID string) error {
	query := `DELETE FROM competitors WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, competitorID, userID)
	if err != nil {
		return fmt.Errorf("delete competitor %s: %w", competitorID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
