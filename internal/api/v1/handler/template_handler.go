package handler

import (
	"encoding/json"
	"net/http"

	"viralio/internal/api/v1/dto"
	"viralio/internal/middleware"
	"viralio/internal/service"
)

// TemplateHandler handles template and case study endpoints
type TemplateHandler struct {
	templateService service.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// RegisterRoutes mounts template routes
func (h *TemplateHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/templates", authMw(http.HandlerFunc(h.listTemplates)))
	mux.Handle("/case-studies", authMw(http.HandlerFunc(h.listCaseStudies)))
}

// listTemplates godoc
// @Summary List visible templates
// @Description Returns the templates visible to the user's effective tier.
// @Tags templates
// @Produce json
// @Success 200 {array} model.Template
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Router /templates [get]
func (h *TemplateHandler) listTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	templates, err := h.templateService.ListTemplates(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to list templates: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(templates)
}

// listCaseStudies godoc
// @Summary List case studies
// @Description Returns the curated case studies, sampled down to the plan's quota for free users.
// @Tags templates
// @Produce json
// @Success 200 {array} dto.TaskResponseDTO
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Router /case-studies [get]
func (h *TemplateHandler) listCaseStudies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	studies, err := h.templateService.ListCaseStudies(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to list case studies: "+err.Error(), http.StatusInternalServerError)
		return
	}
	resp := make([]dto.TaskResponseDTO, 0, len(studies))
	for i := range studies {
		resp = append(resp, taskResponse(&studies[i]))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
