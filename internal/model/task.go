package model

import "time"

// Format is the content format of a task.
type Format string

const (
	// FormatShort is short-form content ("Kratka Forma" in the product UI).
	FormatShort Format = "Kratka Forma"
	// FormatLong is long-form content ("Duga Forma" in the product UI).
	FormatLong Format = "Duga Forma"
)

// TaskStatus follows the linear Kanban progression.
type TaskStatus string

const (
	StatusIdea      TaskStatus = "idea"
	StatusReady     TaskStatus = "ready"
	StatusScheduled TaskStatus = "scheduled"
	StatusPublished TaskStatus = "published"
)

// statusOrder positions statuses along the Kanban board.
var statusOrder = map[TaskStatus]int{
	StatusIdea:      0,
	StatusReady:     1,
	StatusScheduled: 2,
	StatusPublished: 3,
}

// ValidStatus reports whether s is a known Kanban column.
func ValidStatus(s TaskStatus) bool {
	_, ok := statusOrder[s]
	return ok
}

// ValidTransition reports whether a task may move from one status to
// another. Moves are allowed one column at a time, in either direction.
func ValidTransition(from, to TaskStatus) bool {
	a, okA := statusOrder[from]
	b, okB := statusOrder[to]
	if !okA || !okB {
		return false
	}
	diff := b - a
	return diff == 1 || diff == -1 || diff == 0
}

// Task is a unit of planned content. Hook/Body/CTA hold raw HTML from the
// rich-text editor and must round-trip byte-exact.
type Task struct {
	ID               string     `db:"id" json:"id"`
	UserID           string     `db:"user_id" json:"user_id"`
	Title            string     `db:"title" json:"title"`
	Niche            string     `db:"niche" json:"niche"`
	Format           Format     `db:"format" json:"format"`
	Status           TaskStatus `db:"status" json:"status"`
	Hook             string     `db:"hook" json:"hook"`
	Body             string     `db:"body" json:"body"`
	CTA              string     `db:"cta" json:"cta"`
	PublishDate      *time.Time `db:"publish_date" json:"publish_date,omitempty"`
	CategoryID       *string    `db:"category_id" json:"category_id,omitempty"`
	IsAdminCaseStudy bool       `db:"is_admin_case_study" json:"is_admin_case_study"`
	SanityID         *string    `db:"sanity_id" json:"sanity_id,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// InspirationLink is a reference URL attached to a task. Thumbnail fields
// are best-effort metadata; an empty thumbnail never blocks the link.
type InspirationLink struct {
	ID           string    `db:"id" json:"id"`
	TaskID       string    `db:"task_id" json:"task_id"`
	URL          string    `db:"url" json:"url"`
	ThumbnailURL *string   `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	StoragePath  *string   `db:"storage_path" json:"storage_path,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// TaskCategory is a per-user label, capped at 20 per user.
type TaskCategory struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Color     string    `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
