package dto

import "time"

// TaskCreateDTO is used for incoming task creation requests
type TaskCreateDTO struct {
	Title       string     `json:"title" validate:"required"`
	Niche       string     `json:"niche"`
	Format      string     `json:"format" validate:"required,oneof='Kratka Forma' 'Duga Forma'"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=idea ready scheduled published"`
	Hook        *string    `json:"hook,omitempty"`
	Body        *string    `json:"body,omitempty"`
	CTA         *string    `json:"cta,omitempty"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	CategoryID  *string    `json:"category_id,omitempty"`
}

// TaskUpdateDTO is used for incoming task update requests
type TaskUpdateDTO struct {
	Title       *string    `json:"title,omitempty"`
	Niche       *string    `json:"niche,omitempty"`
	Format      *string    `json:"format,omitempty" validate:"omitempty,oneof='Kratka Forma' 'Duga Forma'"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=idea ready scheduled published"`
	Hook        *string    `json:"hook,omitempty"`
	Body        *string    `json:"body,omitempty"`
	CTA         *string    `json:"cta,omitempty"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	CategoryID  *string    `json:"category_id,omitempty"`
}

// TaskResponseDTO is returned in API responses for tasks
type TaskResponseDTO struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Title            string     `json:"title"`
	Niche            string     `json:"niche"`
	Format           string     `json:"format"`
	Status           string     `json:"status"`
	Hook             string     `json:"hook"`
	Body             string     `json:"body"`
	CTA              string     `json:"cta"`
	PublishDate      *time.Time `json:"publish_date,omitempty"`
	CategoryID       *string    `json:"category_id,omitempty"`
	IsAdminCaseStudy bool       `json:"is_admin_case_study"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CategoryCreateDTO is used for incoming category creation requests
type CategoryCreateDTO struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"required,hexcolor"`
}

// CategoryResponseDTO is returned in API responses for categories
type CategoryResponseDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// LinkCreateDTO is used for incoming inspiration link requests
type LinkCreateDTO struct {
	URL string `json:"url" validate:"required,url"`
}

// LinkResponseDTO is returned in API responses for inspiration links
type LinkResponseDTO struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"task_id"`
	URL          string    `json:"url"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
