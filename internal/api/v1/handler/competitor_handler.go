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

// CompetitorHandler handles competitor tracking endpoints
type CompetitorHandler struct {
	competitorService service.CompetitorService
	validate          *validator.Validate
}

// NewCompetitorHandler creates a new CompetitorHandler
func NewCompetitorHandler(competitorService service.CompetitorService, validate *validator.Validate) *CompetitorHandler {
	return &CompetitorHandler{competitorService: competitorService, validate: validate}
}

// RegisterRoutes mounts competitor routes
func (h *CompetitorHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/competitors", authMw(http.HandlerFunc(h.handleCompetitors)))
	mux.Handle("/competitors/", authMw(http.HandlerFunc(h.handleCompetitor)))
}

func competitorResponse(c *model.Competitor) dto.CompetitorResponseDTO {
	feed := make([]dto.FeedItemDTO, 0, len(c.Feed))
	for _, item := range c.Feed {
		feed = append(feed, dto.FeedItemDTO{Caption: item.Caption, Views: item.Views, Likes: item.Likes, PostedAt: item.PostedAt})
	}
	return dto.CompetitorResponseDTO{
		ID:        c.ID,
		Handle:    c.Handle,
		Platform:  c.Platform,
		Feed:      feed,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (h *CompetitorHandler) handleCompetitors(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	switch r.Method {
	case http.MethodGet:
		competitors, err := h.competitorService.List(r.Context(), userID)
		if err != nil {
			http.Error(w, "Failed to list competitors: "+err.Error(), http.StatusInternalServerError)
			return
		}
		resp := make([]dto.CompetitorResponseDTO, 0, len(competitors))
		for i := range competitors {
			resp = append(resp, competitorResponse(&competitors[i]))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)

	case http.MethodPost:
		var req dto.CompetitorCreateDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := h.validate.Struct(&req); err != nil {
			http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
			return
		}
		competitor, err := h.competitorService.Create(r.Context(), userID, req.Handle, req.Platform)
		if err != nil {
			http.Error(w, "Failed to track competitor: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(competitorResponse(competitor))

	default:
		http.NotFound(w, r)
	}
}

func (h *CompetitorHandler) handleCompetitor(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/competitors/")

	// POST /competitors/{id}/refresh regenerates the feed
	if competitorID, found := strings.CutSuffix(rest, "/refresh"); found {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		competitor, err := h.competitorService.Refresh(r.Context(), competitorID, userID)
		if errors.Is(err, service.ErrCompetitorNotFound) {
			http.Error(w, "Competitor not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Failed to refresh feed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(competitorResponse(competitor))
		return
	}

	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	err := h.competitorService.Delete(r.Context(), rest, userID)
	if errors.Is(err, service.ErrCompetitorNotFound) {
		http.Error(w, "Competitor not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to delete competitor: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
