package service

import (
	"context"
	"math/rand"
	"testing"

	"viralio/internal/model"

	"github.com/rs/zerolog"
)

func TestListCaseStudiesFreeTierTruncated(t *testing.T) {
	tasks := newFakeTaskRepo()
	for i := 0; i < 10; i++ {
		tasks.caseStudies = append(tasks.caseStudies, model.Task{ID: string(rune('a' + i)), IsAdminCaseStudy: true})
	}
	svc := NewTemplateService(nil, tasks, activeStatus(model.TierFree), rand.New(rand.NewSource(1)), zerolog.Nop())

	studies, err := svc.ListCaseStudies(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListCaseStudies: %v", err)
	}
	if len(studies) != 3 {
		t.Fatalf("case studies = %d, want free quota of 3", len(studies))
	}
}

func TestListCaseStudiesProSeesAll(t *testing.T) {
	tasks := newFakeTaskRepo()
	for i := 0; i < 10; i++ {
		tasks.caseStudies = append(tasks.caseStudies, model.Task{ID: string(rune('a' + i)), IsAdminCaseStudy: true})
	}
	svc := NewTemplateService(nil, tasks, activeStatus(model.TierPro), rand.New(rand.NewSource(1)), zerolog.Nop())

	studies, err := svc.ListCaseStudies(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListCaseStudies: %v", err)
	}
	if len(studies) != 10 {
		t.Fatalf("case studies = %d, want all 10", len(studies))
	}
}

func TestListCaseStudiesFewerThanQuota(t *testing.T) {
	tasks := newFakeTaskRepo()
	tasks.caseStudies = []model.Task{{ID: "only", IsAdminCaseStudy: true}}
	svc := NewTemplateService(nil, tasks, activeStatus(model.TierFree), rand.New(rand.NewSource(1)), zerolog.Nop())

	studies, err := svc.ListCaseStudies(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListCaseStudies: %v", err)
	}
	if len(studies) != 1 {
		t.Fatalf("case studies = %d, want the single available one", len(studies))
	}
}

func TestListCaseStudiesLeavesSourceOrderAlone(t *testing.T) {
	tasks := newFakeTaskRepo()
	for i := 0; i < 10; i++ {
		tasks.caseStudies = append(tasks.caseStudies, model.Task{ID: string(rune('a' + i)), IsAdminCaseStudy: true})
	}
	svc := NewTemplateService(nil, tasks, activeStatus(model.TierFree), rand.New(rand.NewSource(1)), zerolog.Nop())

	if _, err := svc.ListCaseStudies(context.Background(), "u1"); err != nil {
		t.Fatalf("ListCaseStudies: %v", err)
	}
	for i := range tasks.caseStudies {
		if want := string(rune('a' + i)); tasks.caseStudies[i].ID != want {
			t.Fatalf("source slice reordered at %d: got %q, want %q", i, tasks.caseStudies[i].ID, want)
		}
	}
}

func TestListCaseStudiesSampleRotates(t *testing.T) {
	tasks := newFakeTaskRepo()
	for i := 0; i < 10; i++ {
		tasks.caseStudies = append(tasks.caseStudies, model.Task{ID: string(rune('a' + i)), IsAdminCaseStudy: true})
	}
	first := NewTemplateService(nil, tasks, activeStatus(model.TierFree), rand.New(rand.NewSource(1)), zerolog.Nop())
	second := NewTemplateService(nil, tasks, activeStatus(model.TierFree), rand.New(rand.NewSource(2)), zerolog.Nop())

	a, err := first.ListCaseStudies(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListCaseStudies: %v", err)
	}
	b, err := second.ListCaseStudies(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListCaseStudies: %v", err)
	}
	same := len(a) == len(b)
	for i := 0; same && i < len(a); i++ {
		same = a[i].ID == b[i].ID
	}
	if same {
		t.Fatal("different shuffle seeds produced identical samples")
	}
}
