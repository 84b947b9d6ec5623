// Package tier maps a subscription tier to its entitlements. Everything in
// here is a pure function over the tables below; gating decisions across
// the codebase go through this package so the numbers live in one place.
package tier

import "viralio/internal/model"

// View is a planner surface that can be tier-gated.
type View string

const (
	ViewKanban      View = "kanban"
	ViewCalendar    View = "calendar"
	ViewCompetitors View = "competitors"
	ViewAssistant   View = "assistant"
)

// Limits holds the numeric entitlements of a tier. A nil limit means
// unlimited.
type Limits struct {
	MaxTasks       *int
	MaxCaseStudies *int
	AllowedViews   map[View]bool
}

func intPtr(n int) *int { return &n }

var limitsByTier = map[model.Tier]Limits{
	model.TierFree: {
		MaxTasks:       intPtr(5),
		MaxCaseStudies: intPtr(3),
		AllowedViews:   map[View]bool{ViewKanban: true},
	},
	model.TierPro: {
		MaxTasks:       nil,
		MaxCaseStudies: nil,
		AllowedViews: map[View]bool{
			ViewKanban:      true,
			ViewCalendar:    true,
			ViewCompetitors: true,
			ViewAssistant:   true,
		},
	},
	model.TierAdmin: {
		MaxTasks:       nil,
		MaxCaseStudies: nil,
		AllowedViews: map[View]bool{
			ViewKanban:      true,
			ViewCalendar:    true,
			ViewCompetitors: true,
			ViewAssistant:   true,
		},
	},
}

// ForTier returns the limits table for a tier. Unknown tiers get the free
// table so a corrupted profile row fails closed.
func ForTier(t model.Tier) Limits {
	if l, ok := limitsByTier[t]; ok {
		return l
	}
	return limitsByTier[model.TierFree]
}

// CanCreateTask reports whether a user on the given tier, currently owning
// currentCount non-case-study tasks, may create another one.
func CanCreateTask(t model.Tier, currentCount int) bool {
	max := ForTier(t).MaxTasks
	if max == nil {
		return true
	}
	return currentCount < *max
}

// CanUseView reports whether the tier may open the given planner view.
func CanUseView(t model.Tier, v View) bool {
	return ForTier(t).AllowedViews[v]
}

// CaseStudyQuota returns how many case studies the tier may browse, nil
// meaning no cap.
func CaseStudyQuota(t model.Tier) *int {
	return ForTier(t).MaxCaseStudies
}
