package tier

import (
	"testing"

	"viralio/internal/model"
)

func TestCanCreateTask(t *testing.T) {
	cases := []struct {
		name  string
		tier  model.Tier
		count int
		want  bool
	}{
		{"free under limit", model.TierFree, 0, true},
		{"free one below limit", model.TierFree, 4, true},
		{"free at limit", model.TierFree, 5, false},
		{"free over limit", model.TierFree, 6, false},
		{"pro unlimited", model.TierPro, 5, true},
		{"pro large count", model.TierPro, 100000, true},
		{"admin unlimited", model.TierAdmin, 100000, true},
		{"unknown tier fails closed at free limit", model.Tier("enterprise"), 5, false},
		{"unknown tier under free limit", model.Tier("enterprise"), 4, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanCreateTask(tc.tier, tc.count); got != tc.want {
				t.Fatalf("CanCreateTask(%s, %d) = %v, want %v", tc.tier, tc.count, got, tc.want)
			}
		})
	}
}

func TestCanCreateTaskBoundaryExact(t *testing.T) {
	// For every tier with a finite limit, creation flips to false exactly
	// at the limit, never before.
	for _, tr := range []model.Tier{model.TierFree, model.TierPro, model.TierAdmin} {
		max := ForTier(tr).MaxTasks
		if max == nil {
			if !CanCreateTask(tr, 1<<20) {
				t.Fatalf("tier %s: nil limit must always allow creation", tr)
			}
			continue
		}
		for n := 0; n <= *max+1; n++ {
			want := n < *max
			if got := CanCreateTask(tr, n); got != want {
				t.Fatalf("tier %s: CanCreateTask(%d) = %v, want %v", tr, n, got, want)
			}
		}
	}
}

func TestCanUseView(t *testing.T) {
	cases := []struct {
		tier model.Tier
		view View
		want bool
	}{
		{model.TierFree, ViewKanban, true},
		{model.TierFree, ViewCalendar, false},
		{model.TierFree, ViewCompetitors, false},
		{model.TierFree, ViewAssistant, false},
		{model.TierPro, ViewKanban, true},
		{model.TierPro, ViewCalendar, true},
		{model.TierPro, ViewCompetitors, true},
		{model.TierPro, ViewAssistant, true},
		{model.TierAdmin, ViewCalendar, true},
		{model.TierAdmin, ViewAssistant, true},
	}

	for _, tc := range cases {
		if got := CanUseView(tc.tier, tc.view); got != tc.want {
			t.Fatalf("CanUseView(%s, %s) = %v, want %v", tc.tier, tc.view, got, tc.want)
		}
	}
}

func TestCaseStudyQuota(t *testing.T) {
	if q := CaseStudyQuota(model.TierFree); q == nil || *q != 3 {
		t.Fatalf("free case-study quota = %v, want 3", q)
	}
	if q := CaseStudyQuota(model.TierPro); q != nil {
		t.Fatalf("pro case-study quota = %v, want nil", *q)
	}
	if q := CaseStudyQuota(model.TierAdmin); q != nil {
		t.Fatalf("admin case-study quota = %v, want nil", *q)
	}
}
