package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"viralio/internal/model"
	"viralio/internal/repository"

	"github.com/rs/zerolog"
)

// ErrCompetitorNotFound is returned for missing or foreign competitor rows.
var ErrCompetitorNotFound = errors.New("competitor not found")

// CompetitorService manages tracked competitors and their mock feeds.
type CompetitorService interface {
	List(ctx context.Context, userID string) ([]model.Competitor, error)
	Create(ctx context.Context, userID, handle, platform string) (*model.Competitor, error)
	Refresh(ctx context.Context, competitorID, userID string) (*model.Competitor, error)
	Delete(ctx context.Context, competitorID, userID string) error
}

type competitorService struct {
	competitors repository.CompetitorRepository
	now         func() time.Time
	logger      zerolog.Logger
}

// NewCompetitorService creates a new CompetitorService with a scoped logger.
func NewCompetitorService(competitors repository.CompetitorRepository, logger zerolog.Logger) CompetitorService {
	return &competitorService{
		competitors: competitors,
		now:         time.Now,
		logger:      logger.With().Str("service", "CompetitorService").Logger(),
	}
}

func (s *competitorService) List(ctx context.Context, userID string) ([]model.Competitor, error) {
	return s.competitors.ListByUserID(ctx, userID)
}

// Create adds a competitor and seeds its feed. No external platform is
// contacted; the feed is generated deterministically from the handle so
// repeated refreshes stay stable.
func (s *competitorService) Create(ctx context.Context, userID, handle, platform string) (*model.Competitor, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, errors.New("handle must not be empty")
	}
	c := &model.Competitor{
		UserID:   userID,
		Handle:   handle,
		Platform: platform,
		Feed:     generateFeed(handle, s.now()),
	}
	if err := s.competitors.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Refresh regenerates the mock feed anchored at the current time.
func (s *competitorService) Refresh(ctx context.Context, competitorID, userID string) (*model.Competitor, error) {
	c, err := s.competitors.GetByID(ctx, competitorID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.UserID != userID {
		return nil, ErrCompetitorNotFound
	}
	c.Feed = generateFeed(c.Handle, s.now())
	if err := s.competitors.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *competitorService) Delete(ctx context.Context, competitorID, userID string) error {
	err := s.competitors.Delete(ctx, competitorID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCompetitorNotFound
	}
	return err
}

var feedCaptions = []string{
	"Behind the scenes of my morning routine",
	"3 mistakes everyone makes when starting out",
	"You won't believe what happened at the shoot",
	"The one tool I can't live without",
	"How I plan a week of content in one hour",
	"Replying to your most asked question",
	"This trend is dead, do this instead",
	"My honest review after 30 days",
}

// generateFeed builds a mock feed seeded by the handle, so the same handle
// always produces the same engagement numbers relative to now.
func generateFeed(handle string, now time.Time) []model.FeedItem {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(handle)))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	count := 5 + rng.Intn(4)
	feed := make([]model.FeedItem, 0, count)
	for i := 0; i < count; i++ {
		views := 1000 + rng.Intn(500000)
		feed = append(feed, model.FeedItem{
			Caption:  fmt.Sprintf("%s #%s", feedCaptions[rng.Intn(len(feedCaptions))], handle),
			Views:    views,
			Likes:    views / (8 + rng.Intn(12)),
			PostedAt: now.AddDate(0, 0, -(i*2 + rng.Intn(2))).Truncate(time.Hour),
		})
	}
	return feed
}
