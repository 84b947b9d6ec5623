package service

import (
	"context"
	"database/sql"
	"time"

	"viralio/internal/model"
	"viralio/internal/repository"
)

type fakeProfileRepo struct {
	profiles map[string]*model.Profile
	tierLog  []model.Tier
}

func newFakeProfileRepo(profiles ...*model.Profile) *fakeProfileRepo {
	m := map[string]*model.Profile{}
	for _, p := range profiles {
		m[p.UserID] = p
	}
	return &fakeProfileRepo{profiles: m}
}

func (f *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (*model.Profile, error) {
	return f.profiles[userID], nil
}

func (f *fakeProfileRepo) GetByStripeCustomerID(_ context.Context, customerID string) (*model.Profile, error) {
	for _, p := range f.profiles {
		if p.StripeCustomerID != nil && *p.StripeCustomerID == customerID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProfileRepo) Create(_ context.Context, p *model.Profile) error {
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakeProfileRepo) UpdateSelf(_ context.Context, p *model.Profile) error {
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakeProfileRepo) UpdateTier(_ context.Context, userID string, t model.Tier) error {
	f.tierLog = append(f.tierLog, t)
	if p, ok := f.profiles[userID]; ok {
		p.Tier = t
	}
	return nil
}

func (f *fakeProfileRepo) UpdateUnlimitedFree(_ context.Context, userID string, unlimited bool) error {
	if p, ok := f.profiles[userID]; ok {
		p.HasUnlimitedFree = unlimited
	}
	return nil
}

func (f *fakeProfileRepo) UpdateStripeCustomerID(_ context.Context, userID, customerID string) error {
	if p, ok := f.profiles[userID]; ok {
		p.StripeCustomerID = &customerID
	}
	return nil
}

func (f *fakeProfileRepo) Delete(_ context.Context, userID string) error {
	delete(f.profiles, userID)
	return nil
}

type fakePaymentRepo struct {
	latest    *model.Payment
	bySubID   map[string]*model.Payment
	sessions  map[string]bool
	inserted  []*model.Payment
	latestErr error
}

func (f *fakePaymentRepo) Insert(_ context.Context, p *model.Payment) error {
	f.inserted = append(f.inserted, p)
	if p.StripeSessionID != nil {
		if f.sessions == nil {
			f.sessions = map[string]bool{}
		}
		f.sessions[*p.StripeSessionID] = true
	}
	return nil
}

func (f *fakePaymentRepo) GetLatestCompletedByUser(_ context.Context, _ string) (*model.Payment, error) {
	return f.latest, f.latestErr
}

func (f *fakePaymentRepo) GetLatestBySubscriptionID(_ context.Context, subID string) (*model.Payment, error) {
	return f.bySubID[subID], nil
}

func (f *fakePaymentRepo) ExistsBySessionID(_ context.Context, sessionID string) (bool, error) {
	return f.sessions[sessionID], nil
}

type fakeCreditsRepo struct {
	used int
	max  int
	mon  int
	year int
}

func (f *fakeCreditsRepo) ConsumeCredit(_ context.Context, userID string, month, year, max int) (*model.AICredits, error) {
	f.mon, f.year, f.max = month, year, max
	if f.used >= max {
		return nil, repository.ErrCreditLimitExceeded
	}
	f.used++
	return &model.AICredits{UserID: userID, Month: month, Year: year, CreditsUsed: f.used, UpdatedAt: time.Now()}, nil
}

func (f *fakeCreditsRepo) GetUsage(_ context.Context, userID string, month, year int) (*model.AICredits, error) {
	return &model.AICredits{UserID: userID, Month: month, Year: year, CreditsUsed: f.used}, nil
}

type fakeFetcher struct {
	snap *SubscriptionSnapshot
	err  error
}

func (f *fakeFetcher) FetchSubscription(_ context.Context, _ string) (*SubscriptionSnapshot, error) {
	return f.snap, f.err
}

type fakeSubscriptionService struct {
	status *model.SubscriptionStatus
	err    error
}

func (f *fakeSubscriptionService) Resolve(_ context.Context, _ string) (*model.SubscriptionStatus, error) {
	return f.status, f.err
}

type fakeTaskRepo struct {
	tasks       map[string]*model.Task
	caseStudies []model.Task
	count       int
	deleted     []string
	links       map[string][]model.InspirationLink
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]*model.Task{}, links: map[string][]model.InspirationLink{}}
}

func (f *fakeTaskRepo) ListByUserID(_ context.Context, userID string) ([]model.Task, error) {
	out := []model.Task{}
	for _, t := range f.tasks {
		if t.UserID == userID && !t.IsAdminCaseStudy {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) ListCaseStudies(_ context.Context) ([]model.Task, error) {
	return f.caseStudies, nil
}

func (f *fakeTaskRepo) GetByID(_ context.Context, taskID string) (*model.Task, error) {
	return f.tasks[taskID], nil
}

func (f *fakeTaskRepo) CountByUserID(_ context.Context, _ string) (int, error) {
	return f.count, nil
}

func (f *fakeTaskRepo) Create(_ context.Context, t *model.Task) error {
	if t.ID == "" {
		t.ID = "task-created"
	}
	f.tasks[t.ID] = t
	f.count++
	return nil
}

func (f *fakeTaskRepo) Update(_ context.Context, t *model.Task) error {
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, taskID, userID string) error {
	t, ok := f.tasks[taskID]
	if !ok || t.UserID != userID {
		return sql.ErrNoRows
	}
	delete(f.tasks, taskID)
	f.deleted = append(f.deleted, taskID)
	f.count--
	return nil
}

func (f *fakeTaskRepo) UpsertCaseStudy(_ context.Context, t *model.Task) error {
	t.IsAdminCaseStudy = true
	f.caseStudies = append(f.caseStudies, *t)
	return nil
}

func (f *fakeTaskRepo) ListLinks(_ context.Context, taskID string) ([]model.InspirationLink, error) {
	return f.links[taskID], nil
}

func (f *fakeTaskRepo) CreateLink(_ context.Context, l *model.InspirationLink) error {
	l.ID = "link-created"
	f.links[l.TaskID] = append(f.links[l.TaskID], *l)
	return nil
}

func (f *fakeTaskRepo) UpdateLinkThumbnail(_ context.Context, _ string, _, _ *string) error {
	return nil
}

func (f *fakeTaskRepo) DeleteLink(_ context.Context, linkID, taskID string) error {
	for i, l := range f.links[taskID] {
		if l.ID == linkID {
			f.links[taskID] = append(f.links[taskID][:i], f.links[taskID][i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}
