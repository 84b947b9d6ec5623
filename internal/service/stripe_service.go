package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"viralio/internal/config"
	"viralio/internal/model"
	"viralio/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	customerpkg "github.com/stripe/stripe-go/v82/customer"
	subscriptionpkg "github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"
)

// ErrSessionAlreadyProcessed is returned by VerifySession when the
// checkout was already recorded by the asynchronous webhook path.
var ErrSessionAlreadyProcessed = errors.New("session already processed")

// ErrNoSubscription is returned when a billing operation needs a
// subscription the user does not have.
var ErrNoSubscription = errors.New("no subscription on record")

// ErrSessionNotOwned is returned when a checkout session's metadata names
// a different user than the caller.
var ErrSessionNotOwned = errors.New("checkout session belongs to another user")

// StripeService manages Stripe integration: checkout, the webhook
// reconciler and its synchronous verify-session fallback.
type StripeService struct {
	cfg      *config.Config
	profiles repository.ProfileRepository
	payments repository.PaymentRepository
	now      func() time.Time
	logger   zerolog.Logger
}

// NewStripeService initializes the Stripe key and returns the service with
// a scoped logger.
func NewStripeService(cfg *config.Config, profiles repository.ProfileRepository, payments repository.PaymentRepository, logger zerolog.Logger) *StripeService {
	stripe.Key = cfg.StripeSecretKey
	lg := logger.With().Str("service", "StripeService").Logger()
	return &StripeService{cfg: cfg, profiles: profiles, payments: payments, now: time.Now, logger: lg}
}

// FetchSubscription implements SubscriptionFetcher for the resolver.
func (s *StripeService) FetchSubscription(ctx context.Context, subscriptionID string) (*SubscriptionSnapshot, error) {
	sub, err := subscriptionpkg.Get(subscriptionID, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch subscription %s: %w", subscriptionID, err)
	}
	return snapshotFromSubscription(sub), nil
}

func snapshotFromSubscription(sub *stripe.Subscription) *SubscriptionSnapshot {
	snap := &SubscriptionSnapshot{
		Status:            string(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.TrialEnd > 0 {
		snap.TrialEnd = time.Unix(sub.TrialEnd, 0)
	}
	if len(sub.Items.Data) > 0 {
		snap.CurrentPeriodEnd = time.Unix(sub.Items.Data[0].CurrentPeriodEnd, 0)
	}
	return snap
}

// CreateCheckoutSession creates a Stripe Checkout session for a plan
// upgrade and returns its URL.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, userID, plan string) (string, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("fetch profile: %w", err)
	}
	if profile == nil {
		return "", ErrProfileNotFound
	}
	customerID, err := s.getOrCreateCustomer(ctx, profile)
	if err != nil {
		return "", err
	}

	var priceID string
	switch plan {
	case "pro_monthly":
		priceID = s.cfg.StripePriceProMonthly
	case "pro_annual":
		priceID = s.cfg.StripePriceProAnnual
	default:
		return "", fmt.Errorf("invalid plan: %s", plan)
	}

	sessParams := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          []*stripe.CheckoutSessionLineItemParams{{Price: stripe.String(priceID), Quantity: stripe.Int64(1)}},
		Mode:               stripe.String(stripe.CheckoutSessionModeSubscription),
		SuccessURL:         stripe.String(s.cfg.StripeReturnURL + "?status=success&session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(s.cfg.StripeReturnURL + "?status=cancel"),
		Metadata:           map[string]string{"user_id": userID},
	}
	sess, err := checkoutsession.New(sessParams)
	if err != nil {
		s.logger.Error().Err(err).Str("plan", plan).Msg("Failed to create Stripe checkout session")
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (s *StripeService) getOrCreateCustomer(ctx context.Context, profile *model.Profile) (string, error) {
	if profile.StripeCustomerID != nil && *profile.StripeCustomerID != "" {
		return *profile.StripeCustomerID, nil
	}
	params := &stripe.CustomerParams{
		Email:    stripe.String(profile.Email),
		Name:     stripe.String(profile.FullName),
		Metadata: map[string]string{"user_id": profile.UserID},
	}
	cust, err := customerpkg.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", profile.UserID).Msg("Failed to create Stripe customer")
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	if err := s.profiles.UpdateStripeCustomerID(ctx, profile.UserID, cust.ID); err != nil {
		return "", fmt.Errorf("store stripe customer id: %w", err)
	}
	return cust.ID, nil
}

// CancelSubscription schedules the user's subscription to end at the
// current period boundary.
func (s *StripeService) CancelSubscription(ctx context.Context, userID string) error {
	payment, err := s.payments.GetLatestCompletedByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("fetch payment ledger: %w", err)
	}
	if payment == nil || payment.StripeSubscriptionID == nil || *payment.StripeSubscriptionID == "" {
		return ErrNoSubscription
	}
	_, err = subscriptionpkg.Update(*payment.StripeSubscriptionID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to cancel Stripe subscription")
		return fmt.Errorf("cancel subscription: %w", err)
	}
	return nil
}

// VerifySession is the synchronous fallback the client calls right after
// returning from checkout, for when the webhook has not arrived yet. It
// short-circuits if the session was already recorded.
func (s *StripeService) VerifySession(ctx context.Context, userID, sessionID string) error {
	exists, err := s.payments.ExistsBySessionID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if exists {
		return ErrSessionAlreadyProcessed
	}

	sess, err := checkoutsession.Get(sessionID, nil)
	if err != nil {
		return fmt.Errorf("fetch checkout session %s: %w", sessionID, err)
	}
	if sess.Subscription == nil || sess.Subscription.ID == "" {
		return fmt.Errorf("session %s has no subscription", sessionID)
	}
	sub, err := subscriptionpkg.Get(sess.Subscription.ID, nil)
	if err != nil {
		return fmt.Errorf("fetch subscription details: %w", err)
	}
	return s.recordCheckout(ctx, userID, sess, sub)
}

// recordCheckout applies the completed-checkout rule: during a trial only
// the profile tier moves (no money, no ledger row); otherwise one Payment
// row is appended and the tier updated. Both the webhook and the verify
// path funnel through here, so the duplicate window between them is
// exactly the documented at-most-one-duplicate race.
func (s *StripeService) recordCheckout(ctx context.Context, userID string, sess *stripe.CheckoutSession, sub *stripe.Subscription) error {
	// Checkout sessions carry the buyer's id in metadata. A verify call
	// presenting someone else's session id must not upgrade the caller.
	if owner := sess.Metadata["user_id"]; owner != "" && owner != userID {
		return fmt.Errorf("session %s: %w", sess.ID, ErrSessionNotOwned)
	}
	now := s.now()
	trialing := sub.Status == stripe.SubscriptionStatusTrialing ||
		(sub.TrialEnd > 0 && time.Unix(sub.TrialEnd, 0).After(now))

	if trialing {
		if err := s.profiles.UpdateTier(ctx, userID, model.TierPro); err != nil {
			return fmt.Errorf("update tier on trial start: %w", err)
		}
		s.logger.Info().Str("user_id", userID).Str("session_id", sess.ID).
			Msg("Trial checkout recorded, tier updated without payment row")
		return nil
	}

	if len(sub.Items.Data) == 0 {
		return fmt.Errorf("subscription %s has no items", sub.ID)
	}
	item := sub.Items.Data[0]
	start := time.Unix(item.CurrentPeriodStart, 0)
	end := time.Unix(item.CurrentPeriodEnd, 0)

	subID := sub.ID
	sessID := sess.ID
	payment := &model.Payment{
		UserID:                  userID,
		AmountCents:             sess.AmountTotal,
		Currency:                string(sess.Currency),
		Status:                  model.PaymentStatusCompleted,
		TierAtPayment:           model.TierPro,
		SubscriptionPeriodStart: start,
		SubscriptionPeriodEnd:   end,
		StripeSubscriptionID:    &subID,
		StripeSessionID:         &sessID,
	}
	if err := s.payments.Insert(ctx, payment); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	if err := s.profiles.UpdateTier(ctx, userID, model.TierPro); err != nil {
		return fmt.Errorf("update tier after payment: %w", err)
	}
	return nil
}

// recordRenewal appends a ledger row for a successful renewal invoice. The
// owning user is located through the most recent payment carrying the same
// subscription id; an unknown subscription is logged and dropped
// (at-most-once, manual reconciliation on failure).
func (s *StripeService) recordRenewal(ctx context.Context, invoice *stripe.Invoice, subscriptionID string) error {
	prev, err := s.payments.GetLatestBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("locate owner of subscription %s: %w", subscriptionID, err)
	}
	if prev == nil {
		s.logger.Warn().Str("subscription_id", subscriptionID).Str("invoice_id", invoice.ID).
			Msg("No owner found for renewal invoice, dropping event")
		return nil
	}

	start := time.Unix(invoice.PeriodStart, 0)
	end := time.Unix(invoice.PeriodEnd, 0)
	payment := &model.Payment{
		UserID:                  prev.UserID,
		AmountCents:             invoice.AmountPaid,
		Currency:                string(invoice.Currency),
		Status:                  model.PaymentStatusCompleted,
		TierAtPayment:           prev.TierAtPayment,
		SubscriptionPeriodStart: start,
		SubscriptionPeriodEnd:   end,
		StripeSubscriptionID:    &subscriptionID,
	}
	if err := s.payments.Insert(ctx, payment); err != nil {
		return fmt.Errorf("insert renewal payment: %w", err)
	}
	return nil
}

// HandleWebhook processes Stripe webhook events.
func (s *StripeService) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read Stripe webhook payload")
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}
	sig := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sig, s.cfg.StripeWebhookSecret)
	if err != nil {
		s.logger.Error().Err(err).Msg("Signature verification failed for Stripe webhook")
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}
	s.logger.Info().Str("event_type", string(event.Type)).Msg("Stripe webhook received")

	ctx := r.Context()
	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			s.logger.Error().Err(err).Msg("Invalid checkout.session data")
			http.Error(w, "invalid checkout.session data", http.StatusBadRequest)
			return
		}
		userID := cs.Metadata["user_id"]
		if userID == "" {
			s.logger.Error().Str("session_id", cs.ID).Msg("Missing user_id in checkout session metadata")
			http.Error(w, "missing user_id in metadata", http.StatusBadRequest)
			return
		}
		if cs.Subscription == nil || cs.Subscription.ID == "" {
			s.logger.Error().Str("session_id", cs.ID).Msg("Checkout session has no subscription")
			http.Error(w, "session has no subscription", http.StatusBadRequest)
			return
		}
		sub, err := subscriptionpkg.Get(cs.Subscription.ID, nil)
		if err != nil {
			s.logger.Error().Err(err).Str("subscription_id", cs.Subscription.ID).Msg("Failed to fetch subscription details")
			http.Error(w, "failed to fetch subscription details", http.StatusInternalServerError)
			return
		}
		if err := s.recordCheckout(ctx, userID, &cs, sub); err != nil {
			s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to record checkout")
			http.Error(w, "failed to record checkout", http.StatusInternalServerError)
			return
		}

	case "invoice.payment_succeeded":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			s.logger.Error().Err(err).Msg("Invalid invoice.payment_succeeded payload")
			http.Error(w, "invalid invoice data", http.StatusBadRequest)
			return
		}
		subID := subscriptionIDFromInvoice(&invoice)
		if subID == "" {
			// Likely a one-time invoice; nothing to reconcile.
			s.logger.Info().Str("invoice_id", invoice.ID).Msg("Invoice has no subscription, skipping")
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := s.recordRenewal(ctx, &invoice, subID); err != nil {
			s.logger.Error().Err(err).Str("invoice_id", invoice.ID).Msg("Failed to record renewal")
			http.Error(w, "failed to record renewal", http.StatusInternalServerError)
			return
		}

	case "customer.subscription.deleted":
		var ss stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &ss); err != nil {
			s.logger.Error().Err(err).Msg("Invalid customer.subscription.deleted payload")
			http.Error(w, "invalid subscription data", http.StatusBadRequest)
			return
		}
		userID, err := s.userIDFromEvent(ctx, ss.Metadata, customerID(ss.Customer))
		if err != nil {
			s.logger.Error().Err(err).Str("subscription_id", ss.ID).Msg("Failed to determine user for deleted subscription")
			http.Error(w, "failed to identify user", http.StatusInternalServerError)
			return
		}
		if err := s.profiles.UpdateTier(ctx, userID, model.TierFree); err != nil {
			s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to downgrade tier")
			http.Error(w, "failed to downgrade tier", http.StatusInternalServerError)
			return
		}

	default:
		s.logger.Warn().Str("event_type", string(event.Type)).Msg("Unhandled Stripe webhook event")
	}
	w.WriteHeader(http.StatusOK)
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func subscriptionIDFromInvoice(invoice *stripe.Invoice) string {
	if invoice.Lines == nil {
		return ""
	}
	for _, line := range invoice.Lines.Data {
		if line.Subscription != nil && line.Subscription.ID != "" {
			return line.Subscription.ID
		}
	}
	return ""
}

// userIDFromEvent resolves the user from webhook metadata, falling back to
// the Stripe customer id.
func (s *StripeService) userIDFromEvent(ctx context.Context, metadata map[string]string, custID string) (string, error) {
	if userID, ok := metadata["user_id"]; ok && userID != "" {
		return userID, nil
	}
	if custID == "" {
		return "", errors.New("cannot determine user: missing metadata and customer id")
	}
	profile, err := s.profiles.GetByStripeCustomerID(ctx, custID)
	if err != nil {
		return "", fmt.Errorf("lookup profile by customer id: %w", err)
	}
	if profile == nil {
		return "", fmt.Errorf("no profile found for customer id %s", custID)
	}
	return profile.UserID, nil
}
