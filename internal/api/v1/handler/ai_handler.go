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

// AIHandler handles assistant endpoints
type AIHandler struct {
	aiService      service.AIService
	profileService service.ProfileService
	validate       *validator.Validate
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(aiService service.AIService, profileService service.ProfileService, validate *validator.Validate) *AIHandler {
	return &AIHandler{aiService: aiService, profileService: profileService, validate: validate}
}

// RegisterRoutes mounts assistant routes
func (h *AIHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/ai/chat", authMw(http.HandlerFunc(h.chat)))
	mux.Handle("/ai/usage", authMw(http.HandlerFunc(h.usage)))
}

// chat godoc
// @Summary Ask the assistant
// @Description Forwards the conversation to the model. Each request spends one monthly credit.
// @Tags ai
// @Accept json
// @Produce json
// @Param chat body dto.AIChatDTO true "Conversation and optional task context"
// @Success 200 {object} dto.AIChatResponseDTO
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Failure 429 {object} dto.AIQuotaErrorDTO
// @Failure 503 {string} string "Assistant not configured"
// @Router /ai/chat [post]
func (h *AIHandler) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.AIChatDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	messages := make([]service.ChatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, service.ChatMessage{Role: m.Role, Content: m.Content})
	}
	var taskCtx *service.TaskContext
	if req.Task != nil {
		taskCtx = &service.TaskContext{
			Format: model.Format(req.Task.Format),
			Niche:  req.Task.Niche,
			Title:  req.Task.Title,
			Hook:   req.Task.Hook,
			Body:   req.Task.Body,
			CTA:    req.Task.CTA,
		}
	}
	// Grounding context is best-effort; chat proceeds without a profile.
	profile, _ := h.profileService.Get(r.Context(), userID)

	reply, err := h.aiService.Chat(r.Context(), userID, messages, taskCtx, profile)
	var quotaErr *service.QuotaError
	switch {
	case errors.As(err, &quotaErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(dto.AIQuotaErrorDTO{
			Error:            quotaErr.Error(),
			ErrorCode:        "INSUFFICIENT_CREDITS",
			CreditsRemaining: quotaErr.Remaining(),
			MaxCredits:       quotaErr.Max,
			ResetAt:          quotaErr.ResetAt,
		})
		return
	case errors.Is(err, service.ErrAINotConfigured):
		http.Error(w, "Assistant not configured", http.StatusServiceUnavailable)
		return
	case err != nil:
		http.Error(w, "Failed to get assistant reply: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := dto.AIChatResponseDTO{
		Message:     reply.Message,
		CreditsUsed: reply.CreditsUsed,
		CreditsMax:  reply.CreditsMax,
	}
	if s := reply.Structured; s.Title != "" || s.Hook != "" || s.Body != "" || s.CTA != "" {
		resp.Structured = &dto.AIStructuredContentDTO{Title: s.Title, Hook: s.Hook, Body: s.Body, CTA: s.CTA}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// usage godoc
// @Summary Get AI credit usage
// @Tags ai
// @Produce json
// @Success 200 {object} dto.AIUsageResponseDTO
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Router /ai/usage [get]
func (h *AIHandler) usage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	counter, max, err := h.aiService.Usage(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to fetch usage: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.AIUsageResponseDTO{
		CreditsUsed: counter.CreditsUsed,
		CreditsMax:  max,
		ResetAt:     counter.ResetAt(),
	})
}
