package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v82"

	"github.com/voicegate/voicegate-server/internal/model"
	"github.com/voicegate/voicegate-server/internal/repository"
	"github.com/voicegate/voicegate-server/internal/util"
)

// CheckoutSession is a minimal representation of a checkout.session.completed
// event body. The purchaser email appears in customer_email on older API
// versions and under customer_details on newer ones.
type CheckoutSession struct {
	ID              string `json:"id"`
	Customer        string `json:"customer"`
	Subscription    string `json:"subscription"`
	CustomerEmail   string `json:"customer_email"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
}

// SubscriptionEvent is a minimal representation of a customer.subscription.*
// event body.
type SubscriptionEvent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ChangeNotifier publishes subscription status changes to interested parties.
type ChangeNotifier interface {
	NotifyChange(ctx context.Context, email string, status model.SubscriptionStatus)
}

// BillingService applies verified billing events to the subscription store.
// Events carry absolute statuses, so field-level writes are idempotent and
// replay-safe regardless of how often the provider redelivers.
type BillingService struct {
	subs     repository.SubscriptionRepository
	events   repository.WebhookEventRepository
	notifier ChangeNotifier
}

func NewBillingService(
	subs repository.SubscriptionRepository,
	events repository.WebhookEventRepository,
	notifier ChangeNotifier,
) *BillingService {
	return &BillingService{
		subs:     subs,
		events:   events,
		notifier: notifier,
	}
}

// Apply mutates subscription state according to a signature-verified event.
// A non-nil error means persistence failed and the caller must answer with a
// server error so the provider redelivers.
//
// Status writes are last-write-wins: correctness assumes events for one
// subscription arrive in order. Out-of-order delivery leaves the status of
// whichever event arrived last, a known limitation.
func (s *BillingService) Apply(ctx context.Context, event *stripe.Event) error {
	processed, err := s.events.WasProcessed(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("check processed event: %w", err)
	}
	if processed {
		log.Info().
			Str("eventId", event.ID).
			Str("type", string(event.Type)).
			Msg("billing event already processed, acknowledging replay")
		return nil
	}

	switch event.Type {
	case "checkout.session.completed":
		if err := s.applyCheckoutCompleted(ctx, event); err != nil {
			return err
		}
	case "customer.subscription.updated":
		if err := s.applySubscriptionUpdated(ctx, event); err != nil {
			return err
		}
	case "customer.subscription.deleted":
		if err := s.applySubscriptionDeleted(ctx, event); err != nil {
			return err
		}
	default:
		log.Info().
			Str("type", string(event.Type)).
			Str("eventId", event.ID).
			Msg("billing event ignored (unhandled type)")
		return nil
	}

	// Record the id only after a successful apply: a failed event must be
	// retried on redelivery, never skipped as a duplicate.
	if err := s.events.MarkProcessed(ctx, event.ID, string(event.Type)); err != nil {
		log.Warn().Err(err).Str("eventId", event.ID).Msg("failed to record processed event; replay will reapply idempotently")
	}

	return nil
}

func (s *BillingService) applyCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	var session CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("decode checkout session: %w", err)
	}

	email := session.CustomerEmail
	if email == "" {
		email = session.CustomerDetails.Email
	}
	if email == "" {
		// Without a purchaser identity there is nothing to key the record on;
		// fabricating one from partial data would orphan the subscription.
		log.Warn().
			Str("eventId", event.ID).
			Str("checkoutSession", session.ID).
			Msg("checkout completed without customer email, skipping")
		return nil
	}

	sub, err := s.subs.UpsertByEmail(ctx, model.UpsertSubscriptionParams{
		Email:          email,
		SubscriptionID: session.Subscription,
		Status:         model.StatusActive,
	})
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}

	log.Info().
		Str("email", util.MaskEmail(email)).
		Str("subscriptionId", session.Subscription).
		Msg("checkout completed, subscription activated")

	s.notify(ctx, sub.Email, sub.Status)
	return nil
}

func (s *BillingService) applySubscriptionUpdated(ctx context.Context, event *stripe.Event) error {
	var sub SubscriptionEvent
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("decode subscription: %w", err)
	}

	// The provider-reported status is stored verbatim; only "active" ever
	// satisfies the access gate.
	n, err := s.subs.UpdateStatusBySubscriptionID(ctx, sub.ID, model.SubscriptionStatus(sub.Status))
	if err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}
	if n == 0 {
		log.Warn().
			Str("subscriptionId", sub.ID).
			Str("status", sub.Status).
			Msg("subscription update for unknown subscription, ignoring")
		return nil
	}

	log.Info().
		Str("subscriptionId", sub.ID).
		Str("status", sub.Status).
		Msg("subscription status updated")

	s.notifyBySubscriptionID(ctx, sub.ID)
	return nil
}

func (s *BillingService) applySubscriptionDeleted(ctx context.Context, event *stripe.Event) error {
	var sub SubscriptionEvent
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("decode subscription: %w", err)
	}

	n, err := s.subs.UpdateStatusBySubscriptionID(ctx, sub.ID, model.StatusCanceled)
	if err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}
	if n == 0 {
		log.Warn().
			Str("subscriptionId", sub.ID).
			Msg("subscription deletion for unknown subscription, ignoring")
		return nil
	}

	log.Info().
		Str("subscriptionId", sub.ID).
		Msg("subscription canceled")

	s.notifyBySubscriptionID(ctx, sub.ID)
	return nil
}

func (s *BillingService) notify(ctx context.Context, email string, status model.SubscriptionStatus) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyChange(ctx, email, status)
}

func (s *BillingService) notifyBySubscriptionID(ctx context.Context, subscriptionID string) {
	if s.notifier == nil {
		return
	}
	// Best effort: the mutation already committed, a lookup failure only
	// costs the notification.
	sub, err := s.subs.FindBySubscriptionID(ctx, subscriptionID)
	if err != nil || sub == nil {
		log.Warn().Err(err).Str("subscriptionId", subscriptionID).Msg("could not resolve identity for change notification")
		return
	}
	s.notifier.NotifyChange(ctx, sub.Email, sub.Status)
}
