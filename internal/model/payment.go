package model

import "time"

// Payment statuses mirrored from the processor.
const (
	PaymentStatusCompleted = "completed"
	PaymentStatusPending   = "pending"
	PaymentStatusFailed    = "failed"
)

// Payment is one row of the append-only billing ledger. The latest
// completed row per user is the read-time source of truth for the current
// plan; nothing in the schema enforces a single active row.
type Payment struct {
	ID                      string    `db:"id" json:"id"`
	UserID                  string    `db:"user_id" json:"user_id"`
	AmountCents             int64     `db:"amount_cents" json:"amount_cents"`
	Currency                string    `db:"currency" json:"currency"`
	Status                  string    `db:"status" json:"status"`
	TierAtPayment           Tier      `db:"tier_at_payment" json:"tier_at_payment"`
	SubscriptionPeriodStart time.Time `db:"subscription_period_start" json:"subscription_period_start"`
	SubscriptionPeriodEnd   time.Time `db:"subscription_period_end" json:"subscription_period_end"`
	StripeSubscriptionID    *string   `db:"stripe_subscription_id" json:"stripe_subscription_id,omitempty"`
	StripeSessionID         *string   `db:"stripe_session_id" json:"stripe_session_id,omitempty"`
	CreatedAt               time.Time `db:"created_at" json:"created_at"`
}

// AICredits is the per-user monthly usage counter. The (user, month, year)
// key is unique; a new month implicitly starts a fresh counter.
type AICredits struct {
	UserID      string    `db:"user_id" json:"user_id"`
	Month       int       `db:"month" json:"month"`
	Year        int       `db:"year" json:"year"`
	CreditsUsed int       `db:"credits_used" json:"credits_used"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ResetAt returns the moment the counter's month rolls over.
func (c AICredits) ResetAt() time.Time {
	return time.Date(c.Year, time.Month(c.Month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
