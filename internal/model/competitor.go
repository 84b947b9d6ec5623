package model

import "time"

// FeedItem is one entry in a competitor's denormalized mock feed.
type FeedItem struct {
	Caption  string    `json:"caption"`
	Views    int       `json:"views"`
	Likes    int       `json:"likes"`
	PostedAt time.Time `json:"posted_at"`
}

// Competitor is an externally tracked profile with a mock feed stored as a
// jsonb array.
type Competitor struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Handle    string     `db:"handle" json:"handle"`
	Platform  string     `db:"platform" json:"platform"`
	Feed      []FeedItem `db:"feed" json:"feed"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
