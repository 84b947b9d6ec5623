package service

import (
	"context"
	"testing"
	"time"

	"viralio/internal/model"

	"github.com/rs/zerolog"
)

func timePtr(t time.Time) *time.Time { return &t }

func newProfileServiceForTest(profiles *fakeProfileRepo, tasks *fakeTaskRepo, now time.Time) *profileService {
	svc := NewProfileService(profiles, tasks, zerolog.Nop()).(*profileService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestRequiredByDay(t *testing.T) {
	tests := []struct {
		name            string
		goal, day, days int
		want            int
	}{
		{"halfway through a 30-day month", 10, 15, 30, 5},
		{"first day rounds up", 10, 1, 30, 1},
		{"last day equals the goal", 10, 30, 30, 10},
		{"uneven division rounds up", 7, 10, 31, 3},
		{"zero goal needs nothing", 0, 20, 30, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := requiredByDay(tt.goal, tt.day, tt.days); got != tt.want {
				t.Fatalf("requiredByDay(%d, %d, %d) = %d, want %d", tt.goal, tt.day, tt.days, got, tt.want)
			}
		})
	}
}

func TestGoalProgressLagging(t *testing.T) {
	// June 15th, goal 10 short-form: 5 required, 3 published.
	now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	profiles := newFakeProfileRepo(&model.Profile{UserID: "u1", MonthlyGoalShort: 10})
	tasks := newFakeTaskRepo()
	for i := 0; i < 3; i++ {
		id := string(rune('a' + i))
		tasks.tasks[id] = &model.Task{
			ID: id, UserID: "u1", Format: model.FormatShort, Status: model.StatusPublished,
			PublishDate: timePtr(now.AddDate(0, 0, -i)),
		}
	}
	svc := newProfileServiceForTest(profiles, tasks, now)

	report, err := svc.GoalProgress(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GoalProgress: %v", err)
	}
	if report.ShortForm.Required != 5 {
		t.Fatalf("required = %d, want 5 at mid-month", report.ShortForm.Required)
	}
	if report.ShortForm.Published != 3 || report.ShortForm.OnTrack {
		t.Fatalf("progress = %+v, want 3 published and lagging", report.ShortForm)
	}
	if report.Message == "" {
		t.Fatal("expected a lagging notification message")
	}
}

func TestGoalProgressOnTrack(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	profiles := newFakeProfileRepo(&model.Profile{UserID: "u1", MonthlyGoalShort: 10})
	tasks := newFakeTaskRepo()
	for i := 0; i < 6; i++ {
		id := string(rune('a' + i))
		tasks.tasks[id] = &model.Task{
			ID: id, UserID: "u1", Format: model.FormatShort, Status: model.StatusPublished,
			PublishDate: timePtr(now.AddDate(0, 0, -i)),
		}
	}
	svc := newProfileServiceForTest(profiles, tasks, now)

	report, err := svc.GoalProgress(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GoalProgress: %v", err)
	}
	if !report.ShortForm.OnTrack {
		t.Fatalf("progress = %+v, want on track with 6 >= 5", report.ShortForm)
	}
}

func TestGoalProgressIgnoresOtherMonths(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	profiles := newFakeProfileRepo(&model.Profile{UserID: "u1", MonthlyGoalShort: 4})
	tasks := newFakeTaskRepo()
	tasks.tasks["old"] = &model.Task{
		ID: "old", UserID: "u1", Format: model.FormatShort, Status: model.StatusPublished,
		PublishDate: timePtr(now.AddDate(0, -1, 0)),
	}
	tasks.tasks["cur"] = &model.Task{
		ID: "cur", UserID: "u1", Format: model.FormatShort, Status: model.StatusPublished,
		PublishDate: timePtr(now.AddDate(0, 0, -1)),
	}
	svc := newProfileServiceForTest(profiles, tasks, now)

	report, err := svc.GoalProgress(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GoalProgress: %v", err)
	}
	if report.ShortForm.Published != 1 {
		t.Fatalf("published = %d, want 1: last month's task must not count", report.ShortForm.Published)
	}
}

func TestGoalProgressCountsFormatsSeparately(t *testing.T) {
	now := time.Date(2025, time.June, 30, 10, 0, 0, 0, time.UTC)
	profiles := newFakeProfileRepo(&model.Profile{UserID: "u1", MonthlyGoalShort: 2, MonthlyGoalLong: 1})
	tasks := newFakeTaskRepo()
	tasks.tasks["s1"] = &model.Task{ID: "s1", UserID: "u1", Format: model.FormatShort, Status: model.StatusPublished, PublishDate: timePtr(now)}
	tasks.tasks["l1"] = &model.Task{ID: "l1", UserID: "u1", Format: model.FormatLong, Status: model.StatusPublished, PublishDate: timePtr(now)}
	tasks.tasks["draft"] = &model.Task{ID: "draft", UserID: "u1", Format: model.FormatShort, Status: model.StatusIdea}
	svc := newProfileServiceForTest(profiles, tasks, now)

	report, err := svc.GoalProgress(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GoalProgress: %v", err)
	}
	if report.ShortForm.Published != 1 || report.LongForm.Published != 1 {
		t.Fatalf("published = %d short / %d long, want 1 / 1", report.ShortForm.Published, report.LongForm.Published)
	}
	if report.LongForm.OnTrack != true {
		t.Fatalf("long form = %+v, want on track", report.LongForm)
	}
	if report.ShortForm.OnTrack {
		t.Fatalf("short form = %+v, want lagging on the last day with 1 of 2", report.ShortForm)
	}
}
