package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"viralio/internal/config"
	"viralio/internal/model"
	"viralio/internal/repository"

	"github.com/rs/zerolog"
)

// AdminService manages user accounts through the identity provider's admin
// API, keeping the local profile rows in step.
type AdminService interface {
	CreateUser(ctx context.Context, email, password, fullName string, t model.Tier) (*model.Profile, error)
	UpdateUserTier(ctx context.Context, userID string, t model.Tier) error
	SetUnlimitedFree(ctx context.Context, userID string, unlimited bool) error
	// DeleteUser removes the auth user, which cascades to the profile. If
	// the provider call fails, the profile row is deleted directly so the
	// user at least disappears from the application.
	DeleteUser(ctx context.Context, userID string) error
}

type adminService struct {
	cfg      *config.Config
	client   *http.Client
	profiles repository.ProfileRepository
	logger   zerolog.Logger
}

// NewAdminService creates a new AdminService with a scoped logger.
func NewAdminService(cfg *config.Config, profiles repository.ProfileRepository, logger zerolog.Logger) AdminService {
	return &adminService{
		cfg:      cfg,
		client:   &http.Client{Timeout: 10 * time.Second},
		profiles: profiles,
		logger:   logger.With().Str("service", "AdminService").Logger(),
	}
}

// adminRequest calls the identity provider's admin endpoint with the
// service-role key.
func (s *adminService) adminRequest(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.cfg.SupabaseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.SupabaseServiceRoleKey)
	req.Header.Set("apikey", s.cfg.SupabaseServiceRoleKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return raw, resp.StatusCode, nil
}

// CreateUser provisions an auth user with a confirmed email and writes the
// matching profile row.
func (s *adminService) CreateUser(ctx context.Context, email, password, fullName string, t model.Tier) (*model.Profile, error) {
	payload := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
		"user_metadata": map[string]string{"full_name": fullName},
	}
	raw, status, err := s.adminRequest(ctx, http.MethodPost, "/auth/v1/admin/users", payload)
	if err != nil {
		return nil, fmt.Errorf("create auth user: %w", err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, fmt.Errorf("create auth user: provider returned status %d: %s", status, raw)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &created); err != nil || created.ID == "" {
		return nil, fmt.Errorf("create auth user: unexpected provider response")
	}

	profile := &model.Profile{
		UserID:   created.ID,
		Email:    email,
		FullName: fullName,
		Tier:     t,
		Role:     model.RoleUser,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", created.ID).Msg("Admin created user")
	return profile, nil
}

func (s *adminService) UpdateUserTier(ctx context.Context, userID string, t model.Tier) error {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrProfileNotFound
	}
	return s.profiles.UpdateTier(ctx, userID, t)
}

func (s *adminService) SetUnlimitedFree(ctx context.Context, userID string, unlimited bool) error {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrProfileNotFound
	}
	return s.profiles.UpdateUnlimitedFree(ctx, userID, unlimited)
}

func (s *adminService) DeleteUser(ctx context.Context, userID string) error {
	raw, status, err := s.adminRequest(ctx, http.MethodDelete, "/auth/v1/admin/users/"+userID, nil)
	if err == nil && (status == http.StatusOK || status == http.StatusNoContent) {
		return nil
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).
			Msg("Identity provider deletion failed, falling back to profile delete")
	} else {
		s.logger.Warn().Int("status", status).Str("user_id", userID).Str("body", string(raw)).
			Msg("Identity provider deletion failed, falling back to profile delete")
	}
	if err := s.profiles.Delete(ctx, userID); err != nil {
		return fmt.Errorf("fallback profile delete: %w", err)
	}
	return nil
}
