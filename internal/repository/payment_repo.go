package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"viralio/internal/model"
)

// PaymentRepository accesses the append-only billing ledger. Rows are only
// ever inserted; "current plan" is a read-time convention over the latest
// completed row.
type PaymentRepository interface {
	Insert(ctx context.Context, p *model.Payment) error
	// GetLatestCompletedByUser returns the most recent completed row, or
	// nil when the user has never paid.
	GetLatestCompletedByUser(ctx context.Context, userID string) (*model.Payment, error)
	// GetLatestBySubscriptionID locates the owning user of a renewal
	// event by its processor subscription id.
	GetLatestBySubscriptionID(ctx context.Context, subscriptionID string) (*model.Payment, error)
	// ExistsBySessionID reports whether a checkout session was already
	// recorded, so the synchronous verify path can short-circuit.
	ExistsBySessionID(ctx context.Context, sessionID string) (bool, error)
}

type paymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo creates a new PaymentRepository.
func NewPaymentRepo(db *sql.DB) PaymentRepository {
	return &paymentRepo{db: db}
}

const paymentColumns = `id, user_id, amount_cents, currency, status, tier_at_payment,
       subscription_period_start, subscription_period_end, stripe_subscription_id, stripe_session_id, created_at`

func scanPayment(row *sql.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.AmountCents,
		&p.Currency,
		&p.Status,
		&p.TierAtPayment,
		&p.SubscriptionPeriodStart,
		&p.SubscriptionPeriodEnd,
		&p.StripeSubscriptionID,
		&p.StripeSessionID,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) Insert(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO payments (user_id, amount_cents, currency, status, tier_at_payment,
		                      subscription_period_start, subscription_period_end,
		                      stripe_subscription_id, stripe_session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.UserID, p.AmountCents, p.Currency, p.Status, p.TierAtPayment,
		p.SubscriptionPeriodStart, p.SubscriptionPeriodEnd,
		p.StripeSubscriptionID, p.StripeSessionID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment for user %s: %w", p.UserID, err)
	}
	return nil
}

func (r *paymentRepo) GetLatestCompletedByUser(ctx context.Context, userID string) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = $1 AND status = 'completed'
		ORDER BY created_at DESC
		LIMIT 1
	`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("fetch latest payment for user %s: %w", userID, err)
	}
	return p, nil
}

func (r *paymentRepo) GetLatestBySubscriptionID(ctx context.Context, subscriptionID string) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE stripe_subscription_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, subscriptionID))
	if err != nil {
		return nil, fmt.Errorf("fetch payment by subscription %s: %w", subscriptionID, err)
	}
	return p, nil
}

func (r *paymentRepo) ExistsBySessionID(ctx context.Context, sessionID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE stripe_session_id = $1 AND status = 'completed')`
	if err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check payment for session %s: %w", sessionID, err)
	}
	return exists, nil
}
