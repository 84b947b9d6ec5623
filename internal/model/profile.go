package model

import "time"

// Tier is the subscription level gating feature access and row limits.
type Tier string

const (
	TierFree  Tier = "free"
	TierPro   Tier = "pro"
	TierAdmin Tier = "admin"
)

// Role is the application role, independent of the paid tier.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Profile is the per-user row created by the signup trigger. It is never
// hard-deleted on its own; it cascades with the auth user.
type Profile struct {
	UserID           string    `db:"user_id" json:"user_id"`
	Email            string    `db:"email" json:"email"`
	FullName         string    `db:"full_name" json:"full_name"`
	Tier             Tier      `db:"tier" json:"tier"`
	Role             Role      `db:"role" json:"role"`
	MonthlyGoalShort int       `db:"monthly_goal_short" json:"monthly_goal_short"`
	MonthlyGoalLong  int       `db:"monthly_goal_long" json:"monthly_goal_long"`
	HasUnlimitedFree bool      `db:"has_unlimited_free" json:"has_unlimited_free"`
	BusinessName     string    `db:"business_name" json:"business_name"`
	Niche            string    `db:"niche" json:"niche"`
	Persona          string    `db:"persona" json:"persona"`
	StripeCustomerID *string   `db:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// SubscriptionStatus is the resolver output consumed by every access check.
type SubscriptionStatus struct {
	HasActiveSubscription bool       `json:"has_active_subscription"`
	SubscriptionEndDate   *time.Time `json:"subscription_end_date,omitempty"`
	Tier                  Tier       `json:"tier"`
	IsAdmin               bool       `json:"is_admin"`
}

// EffectiveTier is the tier gating should use: a lapsed subscription drops
// the user to the free entitlements even if the profile still says pro.
func (s SubscriptionStatus) EffectiveTier() Tier {
	if s.IsAdmin {
		return TierAdmin
	}
	if s.HasActiveSubscription {
		return s.Tier
	}
	return TierFree
}
