package service

import (
	"context"
	"testing"
	"time"

	"viralio/internal/model"

	"github.com/rs/zerolog"
)

type fakeCompetitorRepo struct {
	byID map[string]*model.Competitor
}

func (f *fakeCompetitorRepo) ListByUserID(_ context.Context, userID string) ([]model.Competitor, error) {
	out := []model.Competitor{}
	for _, c := range f.byID {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCompetitorRepo) GetByID(_ context.Context, id string) (*model.Competitor, error) {
	return f.byID[id], nil
}

func (f *fakeCompetitorRepo) Create(_ context.Context, c *model.Competitor) error {
	c.ID = "comp-1"
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCompetitorRepo) Update(_ context.Context, c *model.Competitor) error {
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCompetitorRepo) Delete(_ context.Context, id, _ string) error {
	delete(f.byID, id)
	return nil
}

func TestCreateCompetitorNormalizesHandle(t *testing.T) {
	repo := &fakeCompetitorRepo{byID: map[string]*model.Competitor{}}
	svc := NewCompetitorService(repo, zerolog.Nop())

	c, err := svc.Create(context.Background(), "u1", "  @fitguru  ", "instagram")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Handle != "fitguru" {
		t.Fatalf("handle = %q, want the @ and whitespace stripped", c.Handle)
	}
	if len(c.Feed) == 0 {
		t.Fatal("expected a seeded feed")
	}
}

func TestGenerateFeedDeterministicPerHandle(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	a := generateFeed("fitguru", now)
	b := generateFeed("fitguru", now)
	if len(a) != len(b) {
		t.Fatalf("feed lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("item %d differs for the same handle: %+v vs %+v", i, a[i], b[i])
		}
	}

	other := generateFeed("someoneelse", now)
	if len(other) == len(a) {
		same := true
		for i := range a {
			if a[i] != other[i] {
				same = false
				break
			}
		}
		if same {
			t.Fatal("different handles produced identical feeds")
		}
	}
}

func TestRefreshForeignCompetitor(t *testing.T) {
	repo := &fakeCompetitorRepo{byID: map[string]*model.Competitor{
		"comp-1": {ID: "comp-1", UserID: "owner", Handle: "fitguru"},
	}}
	svc := NewCompetitorService(repo, zerolog.Nop())

	if _, err := svc.Refresh(context.Background(), "comp-1", "intruder"); err != ErrCompetitorNotFound {
		t.Fatalf("error = %v, want ErrCompetitorNotFound", err)
	}
}
