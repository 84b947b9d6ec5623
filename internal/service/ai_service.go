package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"viralio/internal/model"
	"viralio/internal/repository"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// ErrAINotConfigured is returned when no model API key is set.
var ErrAINotConfigured = errors.New("ai assistant is not configured")

// QuotaError is returned when the monthly AI credit ceiling is reached. It
// carries the numbers the client renders in the upgrade prompt.
type QuotaError struct {
	Used    int
	Max     int
	ResetAt time.Time
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("monthly ai credit limit reached (%d/%d)", e.Used, e.Max)
}

// Remaining is how many credits are left this month, never negative.
func (e *QuotaError) Remaining() int {
	if e.Used >= e.Max {
		return 0
	}
	return e.Max - e.Used
}

// TaskContext is the task the assistant is helping with; everything is
// optional except the format.
type TaskContext struct {
	Format model.Format
	Niche  string
	Title  string
	Hook   string
	Body   string
	CTA    string
}

// StructuredContent is the assistant output split into the script fields,
// when the reply follows the section markers. Empty fields mean the model
// answered free-form.
type StructuredContent struct {
	Title string `json:"title,omitempty"`
	Hook  string `json:"hook,omitempty"`
	Body  string `json:"body,omitempty"`
	CTA   string `json:"cta,omitempty"`
}

// AIReply is one assistant answer plus the usage counter after it.
type AIReply struct {
	Message     string
	Structured  StructuredContent
	CreditsUsed int
	CreditsMax  int
}

// ChatMessage is one turn of the conversation the client replays on every
// request; the server keeps no chat state.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatCompleter is the slice of the OpenAI client the service uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIService proxies assistant requests, spending one credit per request.
type AIService interface {
	Chat(ctx context.Context, userID string, messages []ChatMessage, taskCtx *TaskContext, profile *model.Profile) (*AIReply, error)
	Usage(ctx context.Context, userID string) (*model.AICredits, int, error)
}

type aiService struct {
	client  ChatCompleter
	credits repository.CreditsRepository
	model   string
	max     int
	now     func() time.Time
	logger  zerolog.Logger
}

// NewAIService creates a new AIService with a scoped logger. A nil client
// means no API key was configured; Chat will refuse with ErrAINotConfigured.
func NewAIService(client ChatCompleter, credits repository.CreditsRepository, modelName string, maxCredits int, logger zerolog.Logger) AIService {
	return &aiService{
		client:  client,
		credits: credits,
		model:   modelName,
		max:     maxCredits,
		now:     time.Now,
		logger:  logger.With().Str("service", "AIService").Logger(),
	}
}

// Chat spends one credit, then forwards the conversation to the model. A
// failed upstream call does not refund the credit; the counter meters
// attempts, not completions.
func (s *aiService) Chat(ctx context.Context, userID string, messages []ChatMessage, taskCtx *TaskContext, profile *model.Profile) (*AIReply, error) {
	if s.client == nil {
		return nil, ErrAINotConfigured
	}

	now := s.now()
	counter, err := s.credits.ConsumeCredit(ctx, userID, int(now.Month()), now.Year(), s.max)
	if err != nil {
		if errors.Is(err, repository.ErrCreditLimitExceeded) {
			usage, uerr := s.credits.GetUsage(ctx, userID, int(now.Month()), now.Year())
			if uerr != nil {
				return nil, uerr
			}
			return nil, &QuotaError{Used: usage.CreditsUsed, Max: s.max, ResetAt: usage.ResetAt()}
		}
		return nil, err
	}

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: append(
			[]openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(taskCtx, profile)}},
			toOpenAIMessages(messages)...,
		),
	}
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Chat completion failed")
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	content := resp.Choices[0].Message.Content
	return &AIReply{
		Message:     content,
		Structured:  ParseStructuredResponse(content),
		CreditsUsed: counter.CreditsUsed,
		CreditsMax:  s.max,
	}, nil
}

// Usage returns the current month's counter and the ceiling.
func (s *aiService) Usage(ctx context.Context, userID string) (*model.AICredits, int, error) {
	now := s.now()
	counter, err := s.credits.GetUsage(ctx, userID, int(now.Month()), now.Year())
	if err != nil {
		return nil, 0, err
	}
	return counter, s.max, nil
}

func toOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

// buildSystemPrompt assembles the assistant persona from the user's profile
// and the task being edited. The markers it asks for are what
// ParseStructuredResponse looks for on the way back.
func buildSystemPrompt(taskCtx *TaskContext, profile *model.Profile) string {
	var b strings.Builder
	b.WriteString("You are a short-form and long-form video content strategist helping a creator plan scripts. Reply in the language the user writes in.\n")

	if profile != nil {
		if profile.Niche != "" {
			fmt.Fprintf(&b, "The creator's niche: %s.\n", profile.Niche)
		}
		if profile.BusinessName != "" {
			fmt.Fprintf(&b, "Their business: %s.\n", profile.BusinessName)
		}
		if profile.Persona != "" {
			fmt.Fprintf(&b, "Their brand persona: %s.\n", profile.Persona)
		}
	}

	if taskCtx != nil {
		fmt.Fprintf(&b, "\nThey are working on a %q task", taskCtx.Format)
		if taskCtx.Title != "" {
			fmt.Fprintf(&b, " titled %q", taskCtx.Title)
		}
		b.WriteString(".\n")
		if taskCtx.Niche != "" {
			fmt.Fprintf(&b, "Task niche: %s.\n", taskCtx.Niche)
		}
		if taskCtx.Hook != "" {
			fmt.Fprintf(&b, "Current hook:\n%s\n", taskCtx.Hook)
		}
		if taskCtx.Body != "" {
			fmt.Fprintf(&b, "Current body:\n%s\n", taskCtx.Body)
		}
		if taskCtx.CTA != "" {
			fmt.Fprintf(&b, "Current call to action:\n%s\n", taskCtx.CTA)
		}
	}

	b.WriteString("\nWhen the user asks you to write or rewrite script content, structure the relevant parts of your answer with the markers TITLE:, HOOK:, BODY: and CTA:, each on its own line before the section. Otherwise answer normally.")
	return b.String()
}

var sectionMarker = regexp.MustCompile(`(?mi)^\s*(?:\*{0,2})(TITLE|HOOK|BODY|CTA)(?:\*{0,2})\s*:\s*(?:\*{0,2})\s*`)

// ParseStructuredResponse splits an assistant reply into script fields by
// the TITLE/HOOK/BODY/CTA markers. Replies without markers come back empty;
// the client then shows the plain message.
func ParseStructuredResponse(content string) StructuredContent {
	var out StructuredContent
	matches := sectionMarker.FindAllStringSubmatchIndex(content, -1)
	for i, m := range matches {
		name := strings.ToUpper(content[m[2]:m[3]])
		start := m[1]
		end := len(content)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		value := strings.TrimSpace(content[start:end])
		switch name {
		case "TITLE":
			out.Title = value
		case "HOOK":
			out.Hook = value
		case "BODY":
			out.Body = value
		case "CTA":
			out.CTA = value
		}
	}
	return out
}
