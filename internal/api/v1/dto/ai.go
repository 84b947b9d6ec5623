package dto

import "time"

// AIChatDTO is used for incoming assistant requests. The full conversation
// is replayed on every call; the server holds no chat state.
type AIChatDTO struct {
	Messages []AIMessageDTO    `json:"messages" validate:"required,min=1,dive"`
	Task     *AITaskContextDTO `json:"task,omitempty"`
}

// AIMessageDTO is one conversation turn
type AIMessageDTO struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// AITaskContextDTO is the task the user is editing, sent for grounding
type AITaskContextDTO struct {
	Format string `json:"format" validate:"omitempty,oneof='Kratka Forma' 'Duga Forma'"`
	Niche  string `json:"niche,omitempty"`
	Title  string `json:"title,omitempty"`
	Hook   string `json:"hook,omitempty"`
	Body   string `json:"body,omitempty"`
	CTA    string `json:"cta,omitempty"`
}

// AIChatResponseDTO is returned with the assistant reply and usage
type AIChatResponseDTO struct {
	Message     string                  `json:"message"`
	Structured  *AIStructuredContentDTO `json:"structured,omitempty"`
	CreditsUsed int                     `json:"credits_used"`
	CreditsMax  int                     `json:"credits_max"`
}

// AIStructuredContentDTO is the reply split into script fields
type AIStructuredContentDTO struct {
	Title string `json:"title,omitempty"`
	Hook  string `json:"hook,omitempty"`
	Body  string `json:"body,omitempty"`
	CTA   string `json:"cta,omitempty"`
}

// AIUsageResponseDTO is returned by the credit usage endpoint
type AIUsageResponseDTO struct {
	CreditsUsed int       `json:"credits_used"`
	CreditsMax  int       `json:"credits_max"`
	ResetAt     time.Time `json:"reset_at"`
}

// AIQuotaErrorDTO is the 429 body when the monthly ceiling is hit
type AIQuotaErrorDTO struct {
	Error            string    `json:"error"`
	ErrorCode        string    `json:"error_code"`
	CreditsRemaining int       `json:"credits_remaining"`
	MaxCredits       int       `json:"max_credits"`
	ResetAt          time.Time `json:"reset_at"`
}
