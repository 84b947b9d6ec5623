package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"viralio/internal/model"
)

func TestCountByUserIDExcludesCaseStudies(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM tasks\s+WHERE user_id = \$1 AND is_admin_case_study = FALSE`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	repo := NewTaskRepo(db)
	count, err := repo.CountByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CountByUserID: %v", err)
	}
	if count != 5 {
		t.Fatalf("count = %d, want 5", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateTaskPreservesHTMLFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Long-form scripts store the full HTML in hook; the bytes must pass
	// through untouched.
	hook := `<p>Zdravo! <strong>Ovo je skripta</strong> &amp; jos teksta</p>`
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs("user-1", "Script", "fitness", string(model.FormatLong), string(model.StatusIdea),
			hook, "", "", nil, nil, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id", "created_at", "updated_at"}).
			AddRow("task-1", nil, now, now))

	repo := NewTaskRepo(db)
	task := &model.Task{
		UserID: "user-1",
		Title:  "Script",
		Niche:  "fitness",
		Format: model.FormatLong,
		Status: model.StatusIdea,
		Hook:   hook,
	}
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.ID != "task-1" {
		t.Fatalf("task id = %s, want task-1", task.ID)
	}
	if task.Hook != hook {
		t.Fatalf("hook mutated: %q", task.Hook)
	}
}

func TestDeleteTaskNotOwned(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Deleting someone else's task (or a case study) matches zero rows.
	mock.ExpectExec(`DELETE FROM tasks`).
		WithArgs("task-1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewTaskRepo(db)
	err = repo.Delete(context.Background(), "task-1", "intruder")
	if err == nil {
		t.Fatal("expected error deleting a task the user does not own")
	}
}

func TestListByUserIDOrdersNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	cols := []string{"id", "user_id", "title", "niche", "format", "status", "hook", "body", "cta",
		"publish_date", "category_id", "is_admin_case_study", "sanity_id", "created_at", "updated_at"}
	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("t2", "user-1", "newer", "", string(model.FormatShort), "idea", "", "", "", nil, nil, false, nil, now, now).
			AddRow("t1", "user-1", "older", "", string(model.FormatShort), "idea", "", "", "", nil, nil, false, nil, now.Add(-time.Hour), now))

	repo := NewTaskRepo(db)
	tasks, err := repo.ListByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUserID: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "t2" {
		t.Fatalf("tasks = %+v, want t2 first", tasks)
	}
}

func TestCategoryCreateAtCap(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Guarded insert returns no row once the user owns 20 categories.
	mock.ExpectQuery(`INSERT INTO task_categories`).
		WithArgs("user-1", "Hooks", "#ff0000", MaxCategoriesPerUser).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))

	repo := NewCategoryRepo(db)
	err = repo.Create(context.Background(), &model.TaskCategory{UserID: "user-1", Name: "Hooks", Color: "#ff0000"})
	if !errors.Is(err, ErrCategoryLimitReached) {
		t.Fatalf("error = %v, want ErrCategoryLimitReached", err)
	}
}
