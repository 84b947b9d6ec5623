package dto

import "time"

// CompetitorCreateDTO is used for incoming competitor tracking requests
type CompetitorCreateDTO struct {
	Handle   string `json:"handle" validate:"required,max=64"`
	Platform string `json:"platform" validate:"required,oneof=instagram tiktok youtube"`
}

// FeedItemDTO is one entry of a competitor's feed
type FeedItemDTO struct {
	Caption  string    `json:"caption"`
	Views    int       `json:"views"`
	Likes    int       `json:"likes"`
	PostedAt time.Time `json:"posted_at"`
}

// CompetitorResponseDTO is returned in API responses for competitors
type CompetitorResponseDTO struct {
	ID        string        `json:"id"`
	Handle    string        `json:"handle"`
	Platform  string        `json:"platform"`
	Feed      []FeedItemDTO `json:"feed"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
