package service

import (
	"context"
	"time"

	"viralio/internal/model"
	"viralio/internal/repository"

	"github.com/rs/zerolog"
)

// GoalProgress is the monthly publishing pace report for one format.
type GoalProgress struct {
	Goal      int `json:"goal"`
	Published int `json:"published"`
	// Required is how many should be published by today to stay on pace.
	Required int `json:"required"`
	OnTrack  bool `json:"on_track"`
}

// GoalReport combines both formats plus the notification line the client
// shows on the dashboard.
type GoalReport struct {
	ShortForm GoalProgress `json:"short_form"`
	LongForm  GoalProgress `json:"long_form"`
	Message   string       `json:"message"`
}

// ProfileService manages the user's own profile and goal tracking.
type ProfileService interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Update(ctx context.Context, p *model.Profile) (*model.Profile, error)
	GoalProgress(ctx context.Context, userID string) (*GoalReport, error)
}

type profileService struct {
	profiles repository.ProfileRepository
	tasks    repository.TaskRepository
	now      func() time.Time
	logger   zerolog.Logger
}

// NewProfileService creates a new ProfileService with a scoped logger.
func NewProfileService(profiles repository.ProfileRepository, tasks repository.TaskRepository, logger zerolog.Logger) ProfileService {
	return &profileService{
		profiles: profiles,
		tasks:    tasks,
		now:      time.Now,
		logger:   logger.With().Str("service", "ProfileService").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// Update persists the self-service fields and returns the fresh row. Tier,
// role and billing fields are ignored here.
func (s *profileService) Update(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	existing, err := s.profiles.GetByUserID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrProfileNotFound
	}
	if err := s.profiles.UpdateSelf(ctx, p); err != nil {
		return nil, err
	}
	return s.profiles.GetByUserID(ctx, p.UserID)
}

// requiredByDay is the pro-rated target for today: the goal scaled by how
// far into the month we are, rounded up.
func requiredByDay(goal, day, daysInMonth int) int {
	if goal <= 0 {
		return 0
	}
	return (goal*day + daysInMonth - 1) / daysInMonth
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).
		AddDate(0, 1, -1).Day()
}

// GoalProgress compares this month's published tasks against the profile's
// monthly goals and builds the dashboard message.
func (s *profileService) GoalProgress(ctx context.Context, userID string) (*GoalReport, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	tasks, err := s.tasks.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var publishedShort, publishedLong int
	for _, t := range tasks {
		if t.Status != model.StatusPublished {
			continue
		}
		// Publish date drives the month bucket; tasks published without a
		// scheduled date fall back to their last update.
		when := t.UpdatedAt
		if t.PublishDate != nil {
			when = *t.PublishDate
		}
		if when.Before(monthStart) || !when.Before(monthStart.AddDate(0, 1, 0)) {
			continue
		}
		switch t.Format {
		case model.FormatShort:
			publishedShort++
		case model.FormatLong:
			publishedLong++
		}
	}

	day := now.Day()
	days := daysInMonth(now)
	report := &GoalReport{
		ShortForm: progressFor(profile.MonthlyGoalShort, publishedShort, day, days),
		LongForm:  progressFor(profile.MonthlyGoalLong, publishedLong, day, days),
	}
	report.Message = goalMessage(report.ShortForm, report.LongForm)
	return report, nil
}

func progressFor(goal, published, day, days int) GoalProgress {
	required := requiredByDay(goal, day, days)
	return GoalProgress{
		Goal:      goal,
		Published: published,
		Required:  required,
		OnTrack:   published >= required,
	}
}

func goalMessage(short, long GoalProgress) string {
	if short.Goal == 0 && long.Goal == 0 {
		return "Postavi mjesečne ciljeve da pratiš svoj napredak."
	}
	if short.OnTrack && long.OnTrack {
		return "Svaka čast! Na dobrom si putu da ostvariš mjesečne ciljeve."
	}
	return "Kasniš za planom. Objavi još sadržaja da sustigneš mjesečni cilj."
}
