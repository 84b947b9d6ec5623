package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"viralio/internal/api/v1/dto"
	"viralio/internal/middleware"
	"viralio/internal/model"
	"viralio/internal/service"

	"github.com/go-playground/validator/v10"
)

type fakeAIService struct {
	reply *service.AIReply
	err   error
}

func (f *fakeAIService) Chat(_ context.Context, _ string, _ []service.ChatMessage, _ *service.TaskContext, _ *model.Profile) (*service.AIReply, error) {
	return f.reply, f.err
}

func (f *fakeAIService) Usage(_ context.Context, _ string) (*model.AICredits, int, error) {
	return &model.AICredits{Month: 6, Year: 2025, CreditsUsed: 42}, 500, nil
}

type fakeProfileService struct{}

func (f *fakeProfileService) Get(_ context.Context, _ string) (*model.Profile, error) {
	return nil, service.ErrProfileNotFound
}

func (f *fakeProfileService) Update(_ context.Context, _ *model.Profile) (*model.Profile, error) {
	return nil, nil
}

func (f *fakeProfileService) GoalProgress(_ context.Context, _ string) (*service.GoalReport, error) {
	return nil, nil
}

func authedRequest(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(r.Context(), middleware.UserContextKey, "u1")
	return r.WithContext(ctx)
}

func TestChatQuotaExceededReturns429(t *testing.T) {
	reset := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	ai := &fakeAIService{err: &service.QuotaError{Used: 500, Max: 500, ResetAt: reset}}
	h := NewAIHandler(ai, &fakeProfileService{}, validator.New(validator.WithRequiredStructEnabled()))

	w := httptest.NewRecorder()
	h.chat(w, authedRequest(http.MethodPost, "/ai/chat", `{"messages":[{"role":"user","content":"hi"}]}`))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	var body dto.AIQuotaErrorDTO
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.ErrorCode != "INSUFFICIENT_CREDITS" {
		t.Fatalf("error code = %q, want INSUFFICIENT_CREDITS", body.ErrorCode)
	}
	if body.CreditsRemaining != 0 || body.MaxCredits != 500 {
		t.Fatalf("credits = %d remaining of %d, want 0 of 500", body.CreditsRemaining, body.MaxCredits)
	}
	if !body.ResetAt.Equal(reset) {
		t.Fatalf("reset at = %v, want %v", body.ResetAt, reset)
	}
}

func TestChatReturnsStructuredContent(t *testing.T) {
	ai := &fakeAIService{reply: &service.AIReply{
		Message:     "HOOK: Pazi sad",
		Structured:  service.StructuredContent{Hook: "Pazi sad"},
		CreditsUsed: 12,
		CreditsMax:  500,
	}}
	h := NewAIHandler(ai, &fakeProfileService{}, validator.New(validator.WithRequiredStructEnabled()))

	w := httptest.NewRecorder()
	h.chat(w, authedRequest(http.MethodPost, "/ai/chat", `{"messages":[{"role":"user","content":"napisi hook"}]}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	var body dto.AIChatResponseDTO
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Structured == nil || body.Structured.Hook != "Pazi sad" {
		t.Fatalf("structured = %+v, want the parsed hook", body.Structured)
	}
	if body.CreditsUsed != 12 {
		t.Fatalf("credits used = %d, want 12", body.CreditsUsed)
	}
}

func TestChatValidationRejectsEmptyMessages(t *testing.T) {
	h := NewAIHandler(&fakeAIService{}, &fakeProfileService{}, validator.New(validator.WithRequiredStructEnabled()))

	w := httptest.NewRecorder()
	h.chat(w, authedRequest(http.MethodPost, "/ai/chat", `{"messages":[]}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for empty conversation", w.Code)
	}
}

func TestChatUnauthenticated(t *testing.T) {
	h := NewAIHandler(&fakeAIService{}, &fakeProfileService{}, validator.New(validator.WithRequiredStructEnabled()))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/ai/chat", strings.NewReader(`{}`))
	h.chat(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without user context", w.Code)
	}
}

func TestUsageEndpoint(t *testing.T) {
	h := NewAIHandler(&fakeAIService{}, &fakeProfileService{}, validator.New(validator.WithRequiredStructEnabled()))

	w := httptest.NewRecorder()
	h.usage(w, authedRequest(http.MethodGet, "/ai/usage", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body dto.AIUsageResponseDTO
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.CreditsUsed != 42 || body.CreditsMax != 500 {
		t.Fatalf("usage = %d/%d, want 42/500", body.CreditsUsed, body.CreditsMax)
	}
	if got, want := body.ResetAt, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("reset at = %v, want %v", got, want)
	}
}
