package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"viralio/internal/api/v1/dto"
	"viralio/internal/middleware"
	"viralio/internal/model"
	"viralio/internal/service"

	"github.com/go-playground/validator/v10"
)

// AdminHandler handles admin user management and CMS sync endpoints
type AdminHandler struct {
	adminService  service.AdminService
	sanityService service.SanityService
	validate      *validator.Validate
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService service.AdminService, sanityService service.SanityService, validate *validator.Validate) *AdminHandler {
	return &AdminHandler{adminService: adminService, sanityService: sanityService, validate: validate}
}

// RegisterRoutes mounts admin routes behind both auth and the admin gate
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	admin := func(fn http.HandlerFunc) http.Handler {
		return authMw(middleware.AdminMiddleware(fn))
	}
	mux.Handle("/admin/users", admin(h.createUser))
	mux.Handle("/admin/users/", admin(h.handleUser))
	mux.Handle("/sanity/sync-templates", admin(h.syncTemplates))
	mux.Handle("/sanity/sync-case-studies", admin(h.syncCaseStudies))
}

// createUser godoc
// @Summary Create a user
// @Description Provisions an auth user with a confirmed email and a matching profile.
// @Tags admin
// @Accept json
// @Produce json
// @Param user body dto.AdminUserCreateDTO true "User creation request"
// @Success 201 {object} dto.ProfileResponseDTO
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 403 {string} string "Forbidden"
// @Failure 500 {string} string "Failed to create user"
// @Router /admin/users [post]
func (h *AdminHandler) createUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req dto.AdminUserCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	profile, err := h.adminService.CreateUser(r.Context(), req.Email, req.Password, req.FullName, model.Tier(req.Tier))
	if err != nil {
		http.Error(w, "Failed to create user: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(profileResponse(profile))
}

func (h *AdminHandler) handleUser(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimPrefix(r.URL.Path, "/admin/users/")
	if userID == "" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPut:
		h.updateUser(w, r, userID)
	case http.MethodDelete:
		h.deleteUser(w, r, userID)
	default:
		http.NotFound(w, r)
	}
}

// updateUser godoc
// @Summary Update a user
// @Description Changes a user's tier or unlimited-free override.
// @Tags admin
// @Accept json
// @Param userId path string true "User ID"
// @Param user body dto.AdminUserUpdateDTO true "User update request"
// @Success 200 {string} string "Updated"
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 404 {string} string "User not found"
// @Failure 500 {string} string "Failed to update user"
// @Router /admin/users/{userId} [put]
func (h *AdminHandler) updateUser(w http.ResponseWriter, r *http.Request, userID string) {
	var req dto.AdminUserUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Tier != nil {
		err := h.adminService.UpdateUserTier(r.Context(), userID, model.Tier(*req.Tier))
		if errors.Is(err, service.ErrProfileNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Failed to update tier: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if req.HasUnlimitedFree != nil {
		err := h.adminService.SetUnlimitedFree(r.Context(), userID, *req.HasUnlimitedFree)
		if errors.Is(err, service.ErrProfileNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Failed to update unlimited free: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// deleteUser godoc
// @Summary Delete a user
// @Description Deletes the auth user; on provider failure the profile row is removed directly.
// @Tags admin
// @Param userId path string true "User ID"
// @Success 204 {string} string "Deleted"
// @Failure 500 {string} string "Failed to delete user"
// @Router /admin/users/{userId} [delete]
func (h *AdminHandler) deleteUser(w http.ResponseWriter, r *http.Request, userID string) {
	if err := h.adminService.DeleteUser(r.Context(), userID); err != nil {
		http.Error(w, "Failed to delete user: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// syncTemplates godoc
// @Summary Sync templates from the CMS
// @Tags admin
// @Produce json
// @Success 200 {object} dto.SyncResultDTO
// @Failure 500 {string} string "Sync failed"
// @Router /sanity/sync-templates [post]
func (h *AdminHandler) syncTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	result, err := h.sanityService.SyncTemplates(r.Context())
	if err != nil {
		http.Error(w, "Sync failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.SyncResultDTO{Synced: result.Synced, Skipped: result.Skipped})
}

// syncCaseStudies godoc
// @Summary Sync case studies from the CMS
// @Tags admin
// @Produce json
// @Success 200 {object} dto.SyncResultDTO
// @Failure 500 {string} string "Sync failed"
// @Router /sanity/sync-case-studies [post]
func (h *AdminHandler) syncCaseStudies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	adminID, _ := r.Context().Value(middleware.UserContextKey).(string)
	result, err := h.sanityService.SyncCaseStudies(r.Context(), adminID)
	if err != nil {
		http.Error(w, "Sync failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.SyncResultDTO{Synced: result.Synced, Skipped: result.Skipped})
}
