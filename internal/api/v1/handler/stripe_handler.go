package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"viralio/internal/api/v1/dto"
	"viralio/internal/middleware"
	"viralio/internal/service"

	"github.com/go-playground/validator/v10"
)

// StripeHandler handles billing endpoints
type StripeHandler struct {
	stripeService       *service.StripeService
	subscriptionService service.SubscriptionService
	validate            *validator.Validate
}

// NewStripeHandler creates a new StripeHandler
func NewStripeHandler(stripeService *service.StripeService, subscriptionService service.SubscriptionService, validate *validator.Validate) *StripeHandler {
	return &StripeHandler{stripeService: stripeService, subscriptionService: subscriptionService, validate: validate}
}

// RegisterRoutes mounts billing routes. The webhook is signature-verified
// and intentionally mounted without auth middleware.
func (h *StripeHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/stripe/create-checkout-session", authMw(http.HandlerFunc(h.createCheckout)))
	mux.Handle("/stripe/verify-session", authMw(http.HandlerFunc(h.verifySession)))
	mux.Handle("/stripe/cancel-subscription", authMw(http.HandlerFunc(h.cancelSubscription)))
	mux.Handle("/stripe/subscription-status", authMw(http.HandlerFunc(h.subscriptionStatus)))
	mux.HandleFunc("/stripe/webhook", h.stripeService.HandleWebhook)
}

// createCheckout godoc
// @Summary Create a checkout session
// @Description Creates a Stripe-hosted checkout session for a plan upgrade.
// @Tags billing
// @Accept json
// @Produce json
// @Param checkout body dto.CheckoutCreateDTO true "Plan selection"
// @Success 200 {object} dto.CheckoutResponseDTO
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Failure 500 {string} string "Failed to create checkout session"
// @Router /stripe/create-checkout-session [post]
func (h *StripeHandler) createCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.CheckoutCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	url, err := h.stripeService.CreateCheckoutSession(r.Context(), userID, req.Plan)
	if errors.Is(err, service.ErrProfileNotFound) {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to create checkout session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.CheckoutResponseDTO{URL: url})
}

// verifySession godoc
// @Summary Verify a checkout session
// @Description Synchronous fallback the client calls after returning from checkout, in case the webhook has not landed yet.
// @Tags billing
// @Accept json
// @Param session body dto.VerifySessionDTO true "Checkout session id"
// @Success 200 {string} string "Recorded, or already processed"
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Failure 403 {string} string "Session belongs to another user"
// @Failure 500 {string} string "Failed to verify session"
// @Router /stripe/verify-session [post]
func (h *StripeHandler) verifySession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.VerifySessionDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	err := h.stripeService.VerifySession(r.Context(), userID, req.SessionID)
	if errors.Is(err, service.ErrSessionAlreadyProcessed) {
		w.WriteHeader(http.StatusOK)
		return
	}
	if errors.Is(err, service.ErrSessionNotOwned) {
		http.Error(w, "Session belongs to another user", http.StatusForbidden)
		return
	}
	if err != nil {
		http.Error(w, "Failed to verify session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// cancelSubscription godoc
// @Summary Cancel the subscription
// @Description Schedules the subscription to end at the current period boundary; access continues until then.
// @Tags billing
// @Success 200 {string} string "Cancellation scheduled"
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Failure 404 {string} string "No subscription on record"
// @Failure 500 {string} string "Failed to cancel subscription"
// @Router /stripe/cancel-subscription [post]
func (h *StripeHandler) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	err := h.stripeService.CancelSubscription(r.Context(), userID)
	if errors.Is(err, service.ErrNoSubscription) {
		http.Error(w, "No subscription on record", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to cancel subscription: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// subscriptionStatus godoc
// @Summary Get subscription status
// @Description Resolves the user's current access, consulting the payment processor when needed.
// @Tags billing
// @Produce json
// @Success 200 {object} dto.SubscriptionStatusDTO
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Failure 404 {string} string "Profile not found"
// @Router /stripe/subscription-status [get]
func (h *StripeHandler) subscriptionStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	status, err := h.subscriptionService.Resolve(r.Context(), userID)
	if errors.Is(err, service.ErrProfileNotFound) {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to resolve subscription: "+err.Error(), http.StatusInternalServerError)
		return
	}
	resp := dto.SubscriptionStatusDTO{
		HasActiveSubscription: status.HasActiveSubscription,
		SubscriptionEndDate:   status.SubscriptionEndDate,
		Tier:                  string(status.Tier),
		IsAdmin:               status.IsAdmin,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
