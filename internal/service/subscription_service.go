package service

import (
	"context"
	"errors"
	"time"

	"viralio/internal/model"
	"viralio/internal/repository"

	"github.com/rs/zerolog"
)

// ErrProfileNotFound is returned when the user has no profile row.
var ErrProfileNotFound = errors.New("profile not found")

// SubscriptionSnapshot is the slice of a live processor subscription the
// resolver needs.
type SubscriptionSnapshot struct {
	Status            string
	TrialEnd          time.Time
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
}

// TrialRunning reports whether the snapshot is inside its trial window.
func (s SubscriptionSnapshot) TrialRunning(now time.Time) bool {
	return s.Status == "trialing" || (!s.TrialEnd.IsZero() && s.TrialEnd.After(now))
}

// SubscriptionFetcher looks a subscription up at the payment processor.
type SubscriptionFetcher interface {
	FetchSubscription(ctx context.Context, subscriptionID string) (*SubscriptionSnapshot, error)
}

// SubscriptionService resolves a user's current access.
type SubscriptionService interface {
	Resolve(ctx context.Context, userID string) (*model.SubscriptionStatus, error)
}

type subscriptionService struct {
	profiles repository.ProfileRepository
	payments repository.PaymentRepository
	fetcher  SubscriptionFetcher
	now      func() time.Time
	logger   zerolog.Logger
}

// NewSubscriptionService creates a new SubscriptionService with a scoped logger.
func NewSubscriptionService(
	profiles repository.ProfileRepository,
	payments repository.PaymentRepository,
	fetcher SubscriptionFetcher,
	logger zerolog.Logger,
) SubscriptionService {
	return &subscriptionService{
		profiles: profiles,
		payments: payments,
		fetcher:  fetcher,
		now:      time.Now,
		logger:   logger.With().Str("service", "SubscriptionService").Logger(),
	}
}

// Resolve walks the access rules in order, first match wins:
//  1. admin role
//  2. unlimited-free override
//  3. live processor lookup via the ledger's subscription id
//  4. pro tier with no subscription id yet (trial-start gap)
//  5. latest completed payment's period end
//  6. no ledger rows at all
//
// A failing live lookup falls through to the ledger instead of surfacing;
// a subscription check must never take a page down.
func (s *subscriptionService) Resolve(ctx context.Context, userID string) (*model.SubscriptionStatus, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	if profile.Role == model.RoleAdmin {
		return &model.SubscriptionStatus{
			HasActiveSubscription: true,
			Tier:                  model.TierAdmin,
			IsAdmin:               true,
		}, nil
	}

	if profile.HasUnlimitedFree {
		return &model.SubscriptionStatus{
			HasActiveSubscription: true,
			Tier:                  profile.Tier,
		}, nil
	}

	payment, err := s.payments.GetLatestCompletedByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch payment ledger")
		return nil, err
	}

	now := s.now()

	if payment != nil && payment.StripeSubscriptionID != nil && *payment.StripeSubscriptionID != "" {
		snap, err := s.fetcher.FetchSubscription(ctx, *payment.StripeSubscriptionID)
		if err != nil {
			// The subscription may have been deleted upstream; the ledger
			// fallback below still answers.
			s.logger.Warn().Err(err).Str("user_id", userID).
				Str("subscription_id", *payment.StripeSubscriptionID).
				Msg("Live subscription lookup failed, falling back to ledger")
		} else if snap.Status == "active" || snap.Status == "trialing" {
			end := snap.CurrentPeriodEnd
			if snap.TrialRunning(now) && snap.TrialEnd.After(end) {
				end = snap.TrialEnd
			}
			return &model.SubscriptionStatus{
				HasActiveSubscription: true,
				SubscriptionEndDate:   &end,
				Tier:                  payment.TierAtPayment,
			}, nil
		}
	} else if profile.Tier == model.TierPro {
		// Trial-start webhook may have set the tier before any payment
		// row exists; grant access optimistically with no end date.
		return &model.SubscriptionStatus{
			HasActiveSubscription: true,
			Tier:                  model.TierPro,
		}, nil
	}

	if payment != nil && payment.SubscriptionPeriodEnd.After(now) {
		end := payment.SubscriptionPeriodEnd
		return &model.SubscriptionStatus{
			HasActiveSubscription: true,
			SubscriptionEndDate:   &end,
			Tier:                  payment.TierAtPayment,
		}, nil
	}

	return &model.SubscriptionStatus{
		HasActiveSubscription: false,
		Tier:                  profile.Tier,
	}, nil
}
