package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"viralio/internal/model"
)

// ProfileRepository defines methods for accessing user profile rows.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*model.Profile, error)
	Create(ctx context.Context, p *model.Profile) error
	// UpdateSelf mutates only the self-service fields (goals, persona
	// metadata); tier and role changes go through dedicated methods.
	UpdateSelf(ctx context.Context, p *model.Profile) error
	UpdateTier(ctx context.Context, userID string, t model.Tier) error
	UpdateUnlimitedFree(ctx context.Context, userID string, unlimited bool) error
	UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error
	// Delete removes the profile row directly. Normally the row cascades
	// with the auth user; this is the fallback path when the identity
	// provider deletion fails.
	Delete(ctx context.Context, userID string) error
}

type profileRepo struct {
	db *sql.DB
}

// NewProfileRepo creates a new ProfileRepository.
func NewProfileRepo(db *sql.DB) ProfileRepository {
	return &profileRepo{db: db}
}

const profileColumns = `user_id, email, full_name, tier, role, monthly_goal_short, monthly_goal_long,
       has_unlimited_free, business_name, niche, persona, stripe_customer_id, created_at, updated_at`

func scanProfile(row *sql.Row) (*model.Profile, error) {
	var p model.Profile
	err := row.Scan(
		&p.UserID,
		&p.Email,
		&p.FullName,
		&p.Tier,
		&p.Role,
		&p.MonthlyGoalShort,
		&p.MonthlyGoalLong,
		&p.HasUnlimitedFree,
		&p.BusinessName,
		&p.Niche,
		&p.Persona,
		&p.StripeCustomerID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, userID))
}

func (r *profileRepo) GetByStripeCustomerID(ctx context.Context, customerID string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE stripe_customer_id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, customerID))
}

func (r *profileRepo) Create(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (user_id, email, full_name, tier, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRowContext(ctx, query, p.UserID, p.Email, p.FullName, p.Tier, p.Role).
		Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("create profile for user %s: %w", p.UserID, err)
	}
	return nil
}

func (r *profileRepo) UpdateSelf(ctx context.Context, p *model.Profile) error {
	query := `
		UPDATE profiles
		SET full_name = $2,
		    monthly_goal_short = $3,
		    monthly_goal_long = $4,
		    business_name = $5,
		    niche = $6,
		    persona = $7,
		    updated_at = NOW()
		WHERE user_id = $1
		RETURNING updated_at
	`
	if err := r.db.QueryRowContext(ctx, query,
		p.UserID, p.FullName, p.MonthlyGoalShort, p.MonthlyGoalLong,
		p.BusinessName, p.Niche, p.Persona,
	).Scan(&p.UpdatedAt); err != nil {
		return fmt.Errorf("update profile for user %s: %w", p.UserID, err)
	}
	return nil
}

func (r *profileRepo) UpdateTier(ctx context.Context, userID string, t model.Tier) error {
	query := `UPDATE profiles SET tier = $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, t); err != nil {
		return fmt.Errorf("update tier for user %s: %w", userID, err)
	}
	return nil
}

func (r *profileRepo) UpdateUnlimitedFree(ctx context.Context, userID string, unlimited bool) error {
	query := `UPDATE profiles SET has_unlimited_free = $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, unlimited); err != nil {
		return fmt.Errorf("update unlimited free for user %s: %w", userID, err)
	}
	return nil
}

func (r *profileRepo) UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error {
	query := `UPDATE profiles SET stripe_customer_id = $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, customerID); err != nil {
		return fmt.Errorf("store stripe customer id for user %s: %w", userID, err)
	}
	return nil
}

func (r *profileRepo) Delete(ctx context.Context, userID string) error {
	query := `DELETE FROM profiles WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete profile for user %s: %w", userID, err)
	}
	return nil
}
