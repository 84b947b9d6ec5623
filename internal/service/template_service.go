package service

import (
	"context"
	"math/rand"

	"viralio/internal/model"
	"viralio/internal/repository"
	"viralio/internal/tier"

	"github.com/rs/zerolog"
)

// TemplateService serves tier-visible templates and curated case studies.
type TemplateService interface {
	ListTemplates(ctx context.Context, userID string) ([]model.Template, error)
	// ListCaseStudies returns the curated examples, shuffled and truncated
	// to the tier's quota so free users see a rotating sample.
	ListCaseStudies(ctx context.Context, userID string) ([]model.Task, error)
}

type templateService struct {
	templates     repository.TemplateRepository
	tasks         repository.TaskRepository
	subscriptions SubscriptionService
	rng           *rand.Rand
	logger        zerolog.Logger
}

// NewTemplateService creates a new TemplateService with a scoped logger.
// The rand source is injected so tests can pin the shuffle.
func NewTemplateService(
	templates repository.TemplateRepository,
	tasks repository.TaskRepository,
	subscriptions SubscriptionService,
	rng *rand.Rand,
	logger zerolog.Logger,
) TemplateService {
	return &templateService{
		templates:     templates,
		tasks:         tasks,
		subscriptions: subscriptions,
		rng:           rng,
		logger:        logger.With().Str("service", "TemplateService").Logger(),
	}
}

func (s *templateService) ListTemplates(ctx context.Context, userID string) ([]model.Template, error) {
	status, err := s.subscriptions.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.templates.ListVisibleToTier(ctx, status.EffectiveTier())
}

func (s *templateService) ListCaseStudies(ctx context.Context, userID string) ([]model.Task, error) {
	status, err := s.subscriptions.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	studies, err := s.tasks.ListCaseStudies(ctx)
	if err != nil {
		return nil, err
	}

	quota := tier.CaseStudyQuota(status.EffectiveTier())
	if quota == nil || len(studies) <= *quota {
		return studies, nil
	}

	// Shuffle a copy; the repository may hand out shared slices.
	sample := append([]model.Task(nil), studies...)
	s.rng.Shuffle(len(sample), func(i, j int) {
		sample[i], sample[j] = sample[j], sample[i]
	})
	return sample[:*quota], nil
}
