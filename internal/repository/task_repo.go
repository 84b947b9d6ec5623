package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"viralio/internal/model"
)

// ErrCategoryNotOwned is returned when a task references a category that
// does not belong to the task's owner.
var ErrCategoryNotOwned = errors.New("category_not_owned")

// TaskRepository defines methods for accessing task rows and their
// inspiration links.
type TaskRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]model.Task, error)
	ListCaseStudies(ctx context.Context) ([]model.Task, error)
	GetByID(ctx context.Context, taskID string) (*model.Task, error)
	// CountByUserID counts the user's own tasks; case-study rows are
	// excluded from every tier computation.
	CountByUserID(ctx context.Context, userID string) (int, error)
	Create(ctx context.Context, t *model.Task) error
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, taskID, userID string) error
	// UpsertCaseStudy mirrors a CMS case study in by its Sanity id.
	UpsertCaseStudy(ctx context.Context, t *model.Task) error

	ListLinks(ctx context.Context, taskID string) ([]model.InspirationLink, error)
	CreateLink(ctx context.Context, l *model.InspirationLink) error
	UpdateLinkThumbnail(ctx context.Context, linkID string, thumbnailURL, storagePath *string) error
	DeleteLink(ctx context.Context, linkID, taskID string) error
}

type taskRepo struct {
	db *sql.DB
}

// NewTaskRepo creates a new TaskRepository.
func NewTaskRepo(db *sql.DB) TaskRepository {
	return &taskRepo{db: db}
}

const taskColumns = `id, user_id, title, niche, format, status, hook, body, cta,
       publish_date, category_id, is_admin_case_study, sanity_id, created_at, updated_at`

func scanTask(scan func(dest ...any) error) (*model.Task, error) {
	var t model.Task
	err := scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Niche,
		&t.Format,
		&t.Status,
		&t.Hook,
		&t.Body,
		&t.CTA,
		&t.PublishDate,
		&t.CategoryID,
		&t.IsAdminCaseStudy,
		&t.SanityID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *taskRepo) queryTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByUserID returns the user's tasks, newest first. Callers rely on
// this ordering; no client-side re-sort happens.
func (r *taskRepo) ListByUserID(ctx context.Context, userID string) ([]model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND is_admin_case_study = FALSE
		ORDER BY created_at DESC
	`
	tasks, err := r.queryTasks(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks for user %s: %w", userID, err)
	}
	return tasks, nil
}

// ListCaseStudies returns the globally visible curated examples.
func (r *taskRepo) ListCaseStudies(ctx context.Context) ([]model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE is_admin_case_study = TRUE
		ORDER BY created_at DESC
	`
	tasks, err := r.queryTasks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list case studies: %w", err)
	}
	return tasks, nil
}

func (r *taskRepo) GetByID(ctx context.Context, taskID string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, taskID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch task %s: %w", taskID, err)
	}
	return t, nil
}

func (r *taskRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM tasks
		WHERE user_id = $1 AND is_admin_case_study = FALSE
	`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tasks for user %s: %w", userID, err)
	}
	return count, nil
}

// Create inserts a task. The category subselect is ownership-scoped so a
// foreign category id silently becomes NULL rather than leaking across
// tenants; the service layer reports that as ErrCategoryNotOwned.
func (r *taskRepo) Create(ctx context.Context, t *model.Task) error {
	query := `
		INSERT INTO tasks (user_id, title, niche, format, status, hook, body, cta, publish_date, category_id, is_admin_case_study)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
		        (SELECT id FROM task_categories WHERE id = $10 AND user_id = $1),
		        $11)
		RETURNING id, category_id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		t.UserID, t.Title, t.Niche, t.Format, t.Status, t.Hook, t.Body, t.CTA,
		t.PublishDate, t.CategoryID, t.IsAdminCaseStudy,
	).Scan(&t.ID, &t.CategoryID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create task for user %s: %w", t.UserID, err)
	}
	return nil
}

func (r *taskRepo) Update(ctx context.Context, t *model.Task) error {
	query := `
		UPDATE tasks
		SET title = $3,
		    niche = $4,
		    format = $5,
		    status = $6,
		    hook = $7,
		    body = $8,
		    cta = $9,
		    publish_date = $10,
		    category_id = (SELECT id FROM task_categories WHERE id = $11 AND user_id = $2),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING category_id, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Niche, t.Format, t.Status, t.Hook, t.Body, t.CTA,
		t.PublishDate, t.CategoryID,
	).Scan(&t.CategoryID, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	return nil
}

func (r *taskRepo) Delete(ctx context.Context, taskID, userID string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2 AND is_admin_case_study = FALSE`
	res, err := r.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", taskID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *taskRepo) UpsertCaseStudy(ctx context.Context, t *model.Task) error {
	query := `
		INSERT INTO tasks (user_id, title, niche, format, status, hook, body, cta, is_admin_case_study, sanity_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9)
		ON CONFLICT (sanity_id) WHERE sanity_id IS NOT NULL DO UPDATE
		SET title = EXCLUDED.title,
		    niche = EXCLUDED.niche,
		    format = EXCLUDED.format,
		    hook = EXCLUDED.hook,
		    body = EXCLUDED.body,
		    cta = EXCLUDED.cta,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		t.UserID, t.Title, t.Niche, t.Format, t.Status, t.Hook, t.Body, t.CTA, t.SanityID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert case study %v: %w", t.SanityID, err)
	}
	return nil
}

func (r *taskRepo) ListLinks(ctx context.Context, taskID string) ([]model.InspirationLink, error) {
	query := `
		SELECT id, task_id, url, thumbnail_url, storage_path, created_at
		FROM inspiration_links
		WHERE task_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("list links for task %s: %w", taskID, err)
	}
	defer rows.Close()

	links := []model.InspirationLink{}
	for rows.Next() {
		var l model.InspirationLink
		if err := rows.Scan(&l.ID, &l.TaskID, &l.URL, &l.ThumbnailURL, &l.StoragePath, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return links, nil
}

func (r *taskRepo) CreateLink(ctx context.Context, l *model.InspirationLink) error {
	query := `
		INSERT INTO inspiration_links (task_id, url, thumbnail_url, storage_path)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, l.TaskID, l.URL, l.ThumbnailURL, l.StoragePath).
		Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("create link for task %s: %w", l.TaskID, err)
	}
	return nil
}

func (r *taskRepo) UpdateLinkThumbnail(ctx context.Context, linkID string, thumbnailURL, storagePath *string) error {
	query := `UPDATE inspiration_links SET thumbnail_url = $2, storage_path = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, linkID, thumbnailURL, storagePath); err != nil {
		return fmt.Errorf("update link thumbnail %s: %w", linkID, err)
	}
	return nil
}

func (r *taskRepo) DeleteLink(ctx context.Context, linkID, taskID string) error {
	query := `DELETE FROM inspiration_links WHERE id = $1 AND task_id = $2`
	res, err := r.db.ExecContext(ctx, query, linkID, taskID)
	if err != nil {
		return fmt.Errorf("delete link %s: %w", linkID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
