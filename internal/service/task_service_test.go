package service

import (
	"context"
	"errors"
	"testing"

	"viralio/internal/model"

	"github.com/rs/zerolog"
)

func activeStatus(t model.Tier) *fakeSubscriptionService {
	return &fakeSubscriptionService{status: &model.SubscriptionStatus{HasActiveSubscription: true, Tier: t}}
}

func lapsedStatus(t model.Tier) *fakeSubscriptionService {
	return &fakeSubscriptionService{status: &model.SubscriptionStatus{HasActiveSubscription: false, Tier: t}}
}

func TestCreateTaskFreeTierAtLimit(t *testing.T) {
	tasks := newFakeTaskRepo()
	tasks.count = 5
	svc := NewTaskService(tasks, nil, activeStatus(model.TierFree), nil, zerolog.Nop())

	err := svc.Create(context.Background(), &model.Task{UserID: "u1", Title: "sixth", Format: model.FormatShort})
	var limitErr *TaskLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("error = %v, want TaskLimitError", err)
	}
	if limitErr.Limit != 5 {
		t.Fatalf("limit = %d, want 5", limitErr.Limit)
	}
}

func TestCreateTaskFreeTierUnderLimit(t *testing.T) {
	tasks := newFakeTaskRepo()
	tasks.count = 4
	svc := NewTaskService(tasks, nil, activeStatus(model.TierFree), nil, zerolog.Nop())

	task := &model.Task{UserID: "u1", Title: "fifth", Format: model.FormatShort}
	if err := svc.Create(context.Background(), task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.Status != model.StatusIdea {
		t.Fatalf("status = %s, want the idea default", task.Status)
	}
}

func TestCreateTaskDeleteFreesSlot(t *testing.T) {
	tasks := newFakeTaskRepo()
	svc := NewTaskService(tasks, nil, activeStatus(model.TierFree), nil, zerolog.Nop())

	tasks.count = 5
	tasks.tasks["t1"] = &model.Task{ID: "t1", UserID: "u1"}
	if err := svc.Create(context.Background(), &model.Task{UserID: "u1", Title: "blocked", Format: model.FormatShort}); err == nil {
		t.Fatal("expected limit error at 5 tasks")
	}
	if err := svc.Delete(context.Background(), "t1", "u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Create(context.Background(), &model.Task{UserID: "u1", Title: "retried", Format: model.FormatShort}); err != nil {
		t.Fatalf("create after delete must succeed: %v", err)
	}
}

func TestCreateTaskLapsedProDropsToFreeLimit(t *testing.T) {
	tasks := newFakeTaskRepo()
	tasks.count = 5
	svc := NewTaskService(tasks, nil, lapsedStatus(model.TierPro), nil, zerolog.Nop())

	err := svc.Create(context.Background(), &model.Task{UserID: "u1", Title: "t", Format: model.FormatShort})
	var limitErr *TaskLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("error = %v, want TaskLimitError for lapsed pro", err)
	}
}

func TestCreateTaskProUnlimited(t *testing.T) {
	tasks := newFakeTaskRepo()
	tasks.count = 1000
	svc := NewTaskService(tasks, nil, activeStatus(model.TierPro), nil, zerolog.Nop())

	if err := svc.Create(context.Background(), &model.Task{UserID: "u1", Title: "t", Format: model.FormatLong}); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestUpdateTaskInvalidTransition(t *testing.T) {
	tasks := newFakeTaskRepo()
	tasks.tasks["t1"] = &model.Task{ID: "t1", UserID: "u1", Status: model.StatusIdea}
	svc := NewTaskService(tasks, nil, activeStatus(model.TierPro), nil, zerolog.Nop())

	err := svc.Update(context.Background(), "u1", &model.Task{ID: "t1", Status: model.StatusPublished})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition for idea -> published", err)
	}
}

func TestUpdateTaskAdjacentTransition(t *testing.T) {
	tasks := newFakeTaskRepo()
	tasks.tasks["t1"] = &model.Task{ID: "t1", UserID: "u1", Status: model.StatusReady}
	svc := NewTaskService(tasks, nil, activeStatus(model.TierPro), nil, zerolog.Nop())

	if err := svc.Update(context.Background(), "u1", &model.Task{ID: "t1", Status: model.StatusScheduled}); err != nil {
		t.Fatalf("ready -> scheduled should pass: %v", err)
	}
	if err := svc.Update(context.Background(), "u1", &model.Task{ID: "t1", Status: model.StatusScheduled}); err != nil {
		t.Fatalf("same-column move should pass: %v", err)
	}
}

func TestUpdateCaseStudyRejected(t *testing.T) {
	tasks := newFakeTaskRepo()
	tasks.tasks["cs1"] = &model.Task{ID: "cs1", UserID: "u1", Status: model.StatusPublished, IsAdminCaseStudy: true}
	svc := NewTaskService(tasks, nil, activeStatus(model.TierPro), nil, zerolog.Nop())

	err := svc.Update(context.Background(), "u1", &model.Task{ID: "cs1", Status: model.StatusPublished, Title: "defaced"})
	if !errors.Is(err, ErrCaseStudyReadOnly) {
		t.Fatalf("error = %v, want ErrCaseStudyReadOnly", err)
	}
}

func TestUpdateForeignTask(t *testing.T) {
	tasks := newFakeTaskRepo()
	tasks.tasks["t1"] = &model.Task{ID: "t1", UserID: "owner", Status: model.StatusIdea}
	svc := NewTaskService(tasks, nil, activeStatus(model.TierPro), nil, zerolog.Nop())

	err := svc.Update(context.Background(), "intruder", &model.Task{ID: "t1", Status: model.StatusIdea})
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("error = %v, want ErrTaskNotFound for a foreign task", err)
	}
}

type fakeThumbnailer struct {
	url  *string
	path *string
	err  error
}

func (f *fakeThumbnailer) Capture(_ context.Context, _ string) (*string, *string, error) {
	return f.url, f.path, f.err
}

func TestAddLinkThumbnailFailureStillCreatesLink(t *testing.T) {
	tasks := newFakeTaskRepo()
	tasks.tasks["t1"] = &model.Task{ID: "t1", UserID: "u1"}
	thumbs := &fakeThumbnailer{err: errors.New("og:image fetch failed")}
	svc := NewTaskService(tasks, nil, activeStatus(model.TierPro), thumbs, zerolog.Nop())

	link, err := svc.AddLink(context.Background(), "t1", "u1", "https://example.com/video")
	if err != nil {
		t.Fatalf("AddLink must succeed despite the thumbnail failure: %v", err)
	}
	if link.ThumbnailURL != nil {
		t.Fatalf("thumbnail = %v, want nil after capture failure", link.ThumbnailURL)
	}
	if len(tasks.links["t1"]) != 1 {
		t.Fatalf("stored links = %d, want 1", len(tasks.links["t1"]))
	}
}

func TestAddLinkWithThumbnail(t *testing.T) {
	tasks := newFakeTaskRepo()
	tasks.tasks["t1"] = &model.Task{ID: "t1", UserID: "u1"}
	thumbURL := "https://cdn.example.com/thumb.jpg"
	storagePath := "links/abc.jpg"
	thumbs := &fakeThumbnailer{url: &thumbURL, path: &storagePath}
	svc := NewTaskService(tasks, nil, activeStatus(model.TierPro), thumbs, zerolog.Nop())

	link, err := svc.AddLink(context.Background(), "t1", "u1", "https://example.com/video")
	if err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	if link.ThumbnailURL == nil || *link.ThumbnailURL != thumbURL {
		t.Fatalf("thumbnail = %v, want %s", link.ThumbnailURL, thumbURL)
	}
}
