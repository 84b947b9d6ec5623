package dto

// AdminUserCreateDTO is used for incoming admin user provisioning requests
type AdminUserCreateDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	Tier     string `json:"tier" validate:"required,oneof=free pro admin"`
}

// AdminUserUpdateDTO is used for incoming admin user update requests
type AdminUserUpdateDTO struct {
	Tier             *string `json:"tier,omitempty" validate:"omitempty,oneof=free pro admin"`
	HasUnlimitedFree *bool   `json:"has_unlimited_free,omitempty"`
}

// SyncResultDTO is returned by the CMS sync endpoints
type SyncResultDTO struct {
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
}
