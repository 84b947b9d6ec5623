package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"viralio/internal/model"
)

// ErrCreditLimitExceeded is returned when a user has spent their monthly
// AI credit ceiling.
var ErrCreditLimitExceeded = errors.New("credit_limit_exceeded")

// CreditsRepository tracks the per-user monthly AI usage counter.
type CreditsRepository interface {
	// ConsumeCredit atomically spends one credit for the (user, month,
	// year) counter. The check and increment are a single statement, so
	// concurrent requests from the same user cannot both pass at the
	// ceiling. Returns the updated counter, or ErrCreditLimitExceeded
	// with no mutation when the ceiling is reached.
	ConsumeCredit(ctx context.Context, userID string, month, year, max int) (*model.AICredits, error)
	// GetUsage returns the current counter, zero-valued when no row
	// exists yet for the month.
	GetUsage(ctx context.Context, userID string, month, year int) (*model.AICredits, error)
}

type creditsRepo struct {
	db *sql.DB
}

// NewCreditsRepo creates a new CreditsRepository.
func NewCreditsRepo(db *sql.DB) CreditsRepository {
	return &creditsRepo{db: db}
}

func (r *creditsRepo) ConsumeCredit(ctx context.Context, userID string, month, year, max int) (*model.AICredits, error) {
	// Both arms are guarded by the ceiling: the SELECT proposes no row
	// when even the first credit would exceed it, and the WHERE on the
	// conflict update makes the statement a no-op at the ceiling. Either
	// way no row comes back and nothing is written.
	query := `
		INSERT INTO ai_credits (user_id, month, year, credits_used, updated_at)
		SELECT $1, $2, $3, 1, NOW()
		WHERE 1 <= $4
		ON CONFLICT (user_id, month, year) DO UPDATE
		SET credits_used = ai_credits.credits_used + 1,
		    updated_at = NOW()
		WHERE ai_credits.credits_used < $4
		RETURNING credits_used, updated_at
	`
	c := &model.AICredits{UserID: userID, Month: month, Year: year}
	err := r.db.QueryRowContext(ctx, query, userID, month, year, max).
		Scan(&c.CreditsUsed, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCreditLimitExceeded
		}
		return nil, fmt.Errorf("consume credit for user %s: %w", userID, err)
	}
	return c, nil
}

func (r *creditsRepo) GetUsage(ctx context.Context, userID string, month, year int) (*model.AICredits, error) {
	query := `
		SELECT credits_used, updated_at
		FROM ai_credits
		WHERE user_id = $1 AND month = $2 AND year = $3
	`
	c := &model.AICredits{UserID: userID, Month: month, Year: year}
	err := r.db.QueryRowContext(ctx, query, userID, month, year).
		Scan(&c.CreditsUsed, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.UpdatedAt = time.Time{}
			return c, nil
		}
		return nil, fmt.Errorf("fetch credit usage for user %s: %w", userID, err)
	}
	return c, nil
}
