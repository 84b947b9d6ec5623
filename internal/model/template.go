package model

import "time"

// Template is an admin-authored content skeleton, mirrored in from the CMS
// and upserted by the (title, format) natural key. Tiers lists the
// subscription tiers the template is visible to.
type Template struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Format    Format    `db:"format" json:"format"`
	Hook      string    `db:"hook" json:"hook"`
	Body      string    `db:"body" json:"body"`
	CTA       string    `db:"cta" json:"cta"`
	SanityID  *string   `db:"sanity_id" json:"sanity_id,omitempty"`
	Tiers     []Tier    `json:"tiers"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
