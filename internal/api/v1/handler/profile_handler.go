package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"viralio/internal/api/v1/dto"
	"viralio/internal/middleware"
	"viralio/internal/model"
	"viralio/internal/service"

	"github.com/go-playground/validator/v10"
)

// ProfileHandler handles profile endpoints
type ProfileHandler struct {
	profileService service.ProfileService
	validate       *validator.Validate
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService service.ProfileService, validate *validator.Validate) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, validate: validate}
}

// RegisterRoutes mounts profile routes
func (h *ProfileHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/profile", authMw(http.HandlerFunc(h.handleProfile)))
	mux.Handle("/profile/goal-progress", authMw(http.HandlerFunc(h.goalProgress)))
}

func profileResponse(p *model.Profile) dto.ProfileResponseDTO {
	return dto.ProfileResponseDTO{
		UserID:           p.UserID,
		Email:            p.Email,
		FullName:         p.FullName,
		Tier:             string(p.Tier),
		Role:             string(p.Role),
		MonthlyGoalShort: p.MonthlyGoalShort,
		MonthlyGoalLong:  p.MonthlyGoalLong,
		BusinessName:     p.BusinessName,
		Niche:            p.Niche,
		Persona:          p.Persona,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (h *ProfileHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.getProfile(w, r, userID)
	case http.MethodPut:
		h.updateProfile(w, r, userID)
	default:
		http.NotFound(w, r)
	}
}

// getProfile godoc
// @Summary Get the user's profile
// @Tags profile
// @Produce json
// @Success 200 {object} dto.ProfileResponseDTO
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Failure 404 {string} string "Profile not found"
// @Router /profile [get]
func (h *ProfileHandler) getProfile(w http.ResponseWriter, r *http.Request, userID string) {
	profile, err := h.profileService.Get(r.Context(), userID)
	if errors.Is(err, service.ErrProfileNotFound) {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to retrieve profile: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profileResponse(profile))
}

// updateProfile godoc
// @Summary Update the user's profile
// @Description Updates the self-service profile fields. Tier, role and billing fields are ignored.
// @Tags profile
// @Accept json
// @Produce json
// @Param profile body dto.ProfileUpdateDTO true "Profile update request"
// @Success 200 {object} dto.ProfileResponseDTO
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Failure 404 {string} string "Profile not found"
// @Router /profile [put]
func (h *ProfileHandler) updateProfile(w http.ResponseWriter, r *http.Request, userID string) {
	var req dto.ProfileUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	profile, err := h.profileService.Get(r.Context(), userID)
	if errors.Is(err, service.ErrProfileNotFound) {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to retrieve profile: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.MonthlyGoalShort != nil {
		profile.MonthlyGoalShort = *req.MonthlyGoalShort
	}
	if req.MonthlyGoalLong != nil {
		profile.MonthlyGoalLong = *req.MonthlyGoalLong
	}
	if req.BusinessName != nil {
		profile.BusinessName = *req.BusinessName
	}
	if req.Niche != nil {
		profile.Niche = *req.Niche
	}
	if req.Persona != nil {
		profile.Persona = *req.Persona
	}
	updated, err := h.profileService.Update(r.Context(), profile)
	if err != nil {
		http.Error(w, "Failed to update profile: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profileResponse(updated))
}

// goalProgress godoc
// @Summary Get monthly goal progress
// @Description Returns this month's publishing pace against the profile's goals.
// @Tags profile
// @Produce json
// @Success 200 {object} service.GoalReport
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Failure 404 {string} string "Profile not found"
// @Router /profile/goal-progress [get]
func (h *ProfileHandler) goalProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	report, err := h.profileService.GoalProgress(r.Context(), userID)
	if errors.Is(err, service.ErrProfileNotFound) {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to compute goal progress: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
