package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"viralio/internal/model"
	"viralio/internal/repository"
	"viralio/internal/tier"

	"github.com/rs/zerolog"
)

// ErrTaskNotFound is returned for missing or foreign task rows.
var ErrTaskNotFound = errors.New("task not found")

// ErrInvalidTransition is returned when a status move skips a Kanban column.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrCaseStudyReadOnly is returned when a non-admin tries to write a
// curated case study.
var ErrCaseStudyReadOnly = errors.New("case studies are read-only")

// TaskLimitError is returned when a free user is at their task cap. The
// limit is included so the client can cite the exact number.
type TaskLimitError struct {
	Limit int
}

func (e *TaskLimitError) Error() string {
	return fmt.Sprintf("task limit of %d reached for the current plan", e.Limit)
}

// Thumbnailer captures a preview image for a URL. Implementations are
// best-effort; failures must not block link creation.
type Thumbnailer interface {
	Capture(ctx context.Context, url string) (thumbnailURL, storagePath *string, err error)
}

// TaskService defines operations over tasks, categories and inspiration
// links, with tier gating applied on top of the repositories.
type TaskService interface {
	List(ctx context.Context, userID string) ([]model.Task, error)
	Create(ctx context.Context, t *model.Task) error
	Update(ctx context.Context, userID string, t *model.Task) error
	Delete(ctx context.Context, taskID, userID string) error

	ListCategories(ctx context.Context, userID string) ([]model.TaskCategory, error)
	CreateCategory(ctx context.Context, c *model.TaskCategory) error
	DeleteCategory(ctx context.Context, categoryID, userID string) error

	ListLinks(ctx context.Context, taskID, userID string) ([]model.InspirationLink, error)
	AddLink(ctx context.Context, taskID, userID, url string) (*model.InspirationLink, error)
	DeleteLink(ctx context.Context, linkID, taskID, userID string) error
}

type taskService struct {
	tasks         repository.TaskRepository
	categories    repository.CategoryRepository
	subscriptions SubscriptionService
	thumbnails    Thumbnailer
	logger        zerolog.Logger
}

// NewTaskService creates a new TaskService with a scoped logger. The
// thumbnailer may be nil when no storage bucket is configured.
func NewTaskService(
	tasks repository.TaskRepository,
	categories repository.CategoryRepository,
	subscriptions SubscriptionService,
	thumbnails Thumbnailer,
	logger zerolog.Logger,
) TaskService {
	return &taskService{
		tasks:         tasks,
		categories:    categories,
		subscriptions: subscriptions,
		thumbnails:    thumbnails,
		logger:        logger.With().Str("service", "TaskService").Logger(),
	}
}

func (s *taskService) List(ctx context.Context, userID string) ([]model.Task, error) {
	return s.tasks.ListByUserID(ctx, userID)
}

// Create inserts a task after checking the effective tier's cap. The count
// is re-read on every attempt, so a delete immediately frees a slot.
func (s *taskService) Create(ctx context.Context, t *model.Task) error {
	status, err := s.subscriptions.Resolve(ctx, t.UserID)
	if err != nil {
		return err
	}
	effective := status.EffectiveTier()

	count, err := s.tasks.CountByUserID(ctx, t.UserID)
	if err != nil {
		return err
	}
	if !tier.CanCreateTask(effective, count) {
		limits := tier.ForTier(effective)
		return &TaskLimitError{Limit: *limits.MaxTasks}
	}

	if t.Status == "" {
		t.Status = model.StatusIdea
	}
	if !model.ValidStatus(t.Status) {
		return fmt.Errorf("unknown task status %q", t.Status)
	}
	t.IsAdminCaseStudy = false

	requestedCategory := t.CategoryID
	if err := s.tasks.Create(ctx, t); err != nil {
		return err
	}
	// The insert nulls out categories the user does not own.
	if requestedCategory != nil && t.CategoryID == nil {
		s.logger.Warn().Str("user_id", t.UserID).Str("category_id", *requestedCategory).
			Msg("Task created without its requested category")
		return repository.ErrCategoryNotOwned
	}
	return nil
}

func (s *taskService) Update(ctx context.Context, userID string, t *model.Task) error {
	existing, err := s.tasks.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	if existing == nil || existing.UserID != userID {
		return ErrTaskNotFound
	}
	if existing.IsAdminCaseStudy {
		return ErrCaseStudyReadOnly
	}
	if t.Status != existing.Status && !model.ValidTransition(existing.Status, t.Status) {
		return ErrInvalidTransition
	}

	t.UserID = userID
	requestedCategory := t.CategoryID
	if err := s.tasks.Update(ctx, t); err != nil {
		return err
	}
	if requestedCategory != nil && t.CategoryID == nil {
		return repository.ErrCategoryNotOwned
	}
	return nil
}

func (s *taskService) Delete(ctx context.Context, taskID, userID string) error {
	err := s.tasks.Delete(ctx, taskID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTaskNotFound
	}
	return err
}

func (s *taskService) ListCategories(ctx context.Context, userID string) ([]model.TaskCategory, error) {
	return s.categories.ListByUserID(ctx, userID)
}

func (s *taskService) CreateCategory(ctx context.Context, c *model.TaskCategory) error {
	return s.categories.Create(ctx, c)
}

func (s *taskService) DeleteCategory(ctx context.Context, categoryID, userID string) error {
	err := s.categories.Delete(ctx, categoryID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.New("category not found")
	}
	return err
}

// ownedTask loads a task and verifies ownership; case studies are never
// owned by regular users.
func (s *taskService) ownedTask(ctx context.Context, taskID, userID string) (*model.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil || t.UserID != userID {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

func (s *taskService) ListLinks(ctx context.Context, taskID, userID string) ([]model.InspirationLink, error) {
	if _, err := s.ownedTask(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return s.tasks.ListLinks(ctx, taskID)
}

// AddLink stores the link immediately and fills the thumbnail afterwards;
// a failed capture leaves the link without one.
func (s *taskService) AddLink(ctx context.Context, taskID, userID, url string) (*model.InspirationLink, error) {
	if _, err := s.ownedTask(ctx, taskID, userID); err != nil {
		return nil, err
	}

	link := &model.InspirationLink{TaskID: taskID, URL: url}
	if err := s.tasks.CreateLink(ctx, link); err != nil {
		return nil, err
	}

	if s.thumbnails != nil {
		thumbURL, storagePath, err := s.thumbnails.Capture(ctx, url)
		if err != nil {
			s.logger.Warn().Err(err).Str("url", url).Msg("Thumbnail capture failed")
			return link, nil
		}
		if thumbURL != nil {
			if err := s.tasks.UpdateLinkThumbnail(ctx, link.ID, thumbURL, storagePath); err != nil {
				s.logger.Warn().Err(err).Str("link_id", link.ID).Msg("Failed to store thumbnail")
				return link, nil
			}
			link.ThumbnailURL = thumbURL
			link.StoragePath = storagePath
		}
	}
	return link, nil
}

func (s *taskService) DeleteLink(ctx context.Context, linkID, taskID, userID string) error {
	if _, err := s.ownedTask(ctx, taskID, userID); err != nil {
		return err
	}
	err := s.tasks.DeleteLink(ctx, linkID, taskID)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.New("link not found")
	}
	return err
}
