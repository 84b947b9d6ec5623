package dto

import "time"

// ProfileResponseDTO is returned in API responses for the user's profile
type ProfileResponseDTO struct {
	UserID           string    `json:"user_id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	Tier             string    `json:"tier"`
	Role             string    `json:"role"`
	MonthlyGoalShort int       `json:"monthly_goal_short"`
	MonthlyGoalLong  int       `json:"monthly_goal_long"`
	BusinessName     string    `json:"business_name"`
	Niche            string    `json:"niche"`
	Persona          string    `json:"persona"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProfileUpdateDTO is used for incoming profile update requests
type ProfileUpdateDTO struct {
	FullName         *string `json:"full_name,omitempty"`
	MonthlyGoalShort *int    `json:"monthly_goal_short,omitempty" validate:"omitempty,min=0,max=100"`
	MonthlyGoalLong  *int    `json:"monthly_goal_long,omitempty" validate:"omitempty,min=0,max=100"`
	BusinessName     *string `json:"business_name,omitempty"`
	Niche            *string `json:"niche,omitempty"`
	Persona          *string `json:"persona,omitempty"`
}

// SubscriptionStatusDTO is returned by the subscription status endpoint
type SubscriptionStatusDTO struct {
	HasActiveSubscription bool       `json:"has_active_subscription"`
	SubscriptionEndDate   *time.Time `json:"subscription_end_date,omitempty"`
	Tier                  string     `json:"tier"`
	IsAdmin               bool       `json:"is_admin"`
}
