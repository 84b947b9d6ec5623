package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"viralio/internal/model"

	"github.com/rs/zerolog"
)

func strPtr(s string) *string { return &s }

func newResolver(profiles *fakeProfileRepo, payments *fakePaymentRepo, fetcher SubscriptionFetcher, now time.Time) *subscriptionService {
	svc := NewSubscriptionService(profiles, payments, fetcher, zerolog.Nop()).(*subscriptionService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestResolveAdminAlwaysActive(t *testing.T) {
	profiles := newFakeProfileRepo(&model.Profile{UserID: "u1", Tier: model.TierFree, Role: model.RoleAdmin})
	svc := newResolver(profiles, &fakePaymentRepo{}, &fakeFetcher{}, time.Now())

	status, err := svc.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !status.HasActiveSubscription || !status.IsAdmin || status.Tier != model.TierAdmin {
		t.Fatalf("status = %+v, want active admin", status)
	}
	if status.EffectiveTier() != model.TierAdmin {
		t.Fatalf("effective tier = %s, want admin", status.EffectiveTier())
	}
}

func TestResolveUnlimitedFreeOverride(t *testing.T) {
	profiles := newFakeProfileRepo(&model.Profile{UserID: "u1", Tier: model.TierFree, Role: model.RoleUser, HasUnlimitedFree: true})
	// The fetcher would fail loudly if the override did not short-circuit.
	svc := newResolver(profiles, &fakePaymentRepo{}, &fakeFetcher{err: errors.New("must not be called")}, time.Now())

	status, err := svc.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !status.HasActiveSubscription {
		t.Fatal("expected active subscription from unlimited-free override")
	}
}

func TestResolveLiveSubscriptionActive(t *testing.T) {
	now := time.Now()
	end := now.Add(20 * 24 * time.Hour)
	profiles := newFakeProfileRepo(&model.Profile{UserID: "u1", Tier: model.TierPro, Role: model.RoleUser})
	payments := &fakePaymentRepo{latest: &model.Payment{
		UserID:                "u1",
		TierAtPayment:         model.TierPro,
		SubscriptionPeriodEnd: now.Add(-time.Hour),
		StripeSubscriptionID:  strPtr("sub_1"),
	}}
	fetcher := &fakeFetcher{snap: &SubscriptionSnapshot{Status: "active", CurrentPeriodEnd: end}}
	svc := newResolver(profiles, payments, fetcher, now)

	status, err := svc.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !status.HasActiveSubscription || status.Tier != model.TierPro {
		t.Fatalf("status = %+v, want active pro", status)
	}
	if status.SubscriptionEndDate == nil || !status.SubscriptionEndDate.Equal(end) {
		t.Fatalf("end date = %v, want %v", status.SubscriptionEndDate, end)
	}
}

func TestResolveLiveLookupFailureFallsBackToLedger(t *testing.T) {
	now := time.Now()
	end := now.Add(10 * 24 * time.Hour)
	profiles := newFakeProfileRepo(&model.Profile{UserID: "u1", Tier: model.TierPro, Role: model.RoleUser})
	payments := &fakePaymentRepo{latest: &model.Payment{
		UserID:                "u1",
		TierAtPayment:         model.TierPro,
		SubscriptionPeriodEnd: end,
		StripeSubscriptionID:  strPtr("sub_1"),
	}}
	fetcher := &fakeFetcher{err: errors.New("stripe unreachable")}
	svc := newResolver(profiles, payments, fetcher, now)

	status, err := svc.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve should not surface the live lookup failure: %v", err)
	}
	if !status.HasActiveSubscription {
		t.Fatal("expected ledger fallback to grant access while the period runs")
	}
	if status.SubscriptionEndDate == nil || !status.SubscriptionEndDate.Equal(end) {
		t.Fatalf("end date = %v, want ledger period end %v", status.SubscriptionEndDate, end)
	}
}

func TestResolveProTierWithoutSubscriptionID(t *testing.T) {
	// Trial start sets the tier before any ledger row exists.
	profiles := newFakeProfileRepo(&model.Profile{UserID: "u1", Tier: model.TierPro, Role: model.RoleUser})
	svc := newResolver(profiles, &fakePaymentRepo{}, &fakeFetcher{}, time.Now())

	status, err := svc.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !status.HasActiveSubscription || status.Tier != model.TierPro {
		t.Fatalf("status = %+v, want optimistic pro grant", status)
	}
	if status.SubscriptionEndDate != nil {
		t.Fatalf("end date = %v, want nil for the optimistic grant", status.SubscriptionEndDate)
	}
}

func TestResolveLapsedSubscription(t *testing.T) {
	now := time.Now()
	profiles := newFakeProfileRepo(&model.Profile{UserID: "u1", Tier: model.TierPro, Role: model.RoleUser})
	payments := &fakePaymentRepo{latest: &model.Payment{
		UserID:                "u1",
		TierAtPayment:         model.TierPro,
		SubscriptionPeriodEnd: now.Add(-48 * time.Hour),
		StripeSubscriptionID:  strPtr("sub_1"),
	}}
	fetcher := &fakeFetcher{snap: &SubscriptionSnapshot{Status: "canceled"}}
	svc := newResolver(profiles, payments, fetcher, now)

	status, err := svc.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if status.HasActiveSubscription {
		t.Fatal("expected no active subscription after the period ended")
	}
	if status.EffectiveTier() != model.TierFree {
		t.Fatalf("effective tier = %s, want free for lapsed subscription", status.EffectiveTier())
	}
}

func TestResolveNoProfile(t *testing.T) {
	svc := newResolver(newFakeProfileRepo(), &fakePaymentRepo{}, &fakeFetcher{}, time.Now())
	_, err := svc.Resolve(context.Background(), "ghost")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("error = %v, want ErrProfileNotFound", err)
	}
}

func TestTrialEndExtendsSubscriptionEnd(t *testing.T) {
	now := time.Now()
	periodEnd := now.Add(24 * time.Hour)
	trialEnd := now.Add(72 * time.Hour)
	profiles := newFakeProfileRepo(&model.Profile{UserID: "u1", Tier: model.TierPro, Role: model.RoleUser})
	payments := &fakePaymentRepo{latest: &model.Payment{
		UserID:               "u1",
		TierAtPayment:        model.TierPro,
		StripeSubscriptionID: strPtr("sub_1"),
	}}
	fetcher := &fakeFetcher{snap: &SubscriptionSnapshot{Status: "trialing", TrialEnd: trialEnd, CurrentPeriodEnd: periodEnd}}
	svc := newResolver(profiles, payments, fetcher, now)

	status, err := svc.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if status.SubscriptionEndDate == nil || !status.SubscriptionEndDate.Equal(trialEnd) {
		t.Fatalf("end date = %v, want trial end %v", status.SubscriptionEndDate, trialEnd)
	}
}
