package dto

// CheckoutCreateDTO is used for incoming checkout session requests
type CheckoutCreateDTO struct {
	Plan string `json:"plan" validate:"required,oneof=pro_monthly pro_annual"`
}

// CheckoutResponseDTO is returned with the Stripe-hosted checkout URL
type CheckoutResponseDTO struct {
	URL string `json:"url"`
}

// VerifySessionDTO is used for the post-checkout verification call
type VerifySessionDTO struct {
	SessionID string `json:"session_id" validate:"required"`
}
