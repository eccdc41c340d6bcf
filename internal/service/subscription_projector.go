package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/beautyops/beautyops/internal/domain"
	"github.com/beautyops/beautyops/internal/domain/invoice"
	"github.com/beautyops/beautyops/internal/domain/profile"
	"github.com/beautyops/beautyops/internal/domain/subscription"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/integration/stripe"
	"github.com/beautyops/beautyops/internal/types"
	webhookDto "github.com/beautyops/beautyops/internal/webhook/dto"
	"github.com/samber/lo"
)

// SubscriptionProjector applies provider subscription and invoice events to
// local state. It is the only writer of subscriptions, invoices and the
// subscription fields of user profiles.
type SubscriptionProjector interface {
	OnCreated(ctx context.Context, sub *stripe.Subscription) error
	OnUpdated(ctx context.Context, sub *stripe.Subscription) error
	OnDeleted(ctx context.Context, sub *stripe.Subscription) error
	OnInvoicePaid(ctx context.Context, inv *stripe.Invoice) error
	OnInvoiceFailed(ctx context.Context, inv *stripe.Invoice) error
}

type subscriptionProjector struct {
	ServiceParams
	resolver TierResolver
	profiles ProfileService
}

func NewSubscriptionProjector(params ServiceParams, resolver TierResolver, profiles ProfileService) SubscriptionProjector {
	return &subscriptionProjector{
		ServiceParams: params,
		resolver:      resolver,
		profiles:      profiles,
	}
}

// profileUpdate mutates the subscription fields of a profile
type profileUpdate func(p *profile.Profile)

func (s *subscriptionProjector) OnCreated(ctx context.Context, sub *stripe.Subscription) error {
	userID := sub.UserID()
	if userID == "" {
		s.Logger.Warnw("subscription created without user_id metadata, skipping",
			"stripe_subscription_id", sub.ID,
		)
		return nil
	}

	record, err := s.buildSubscription(sub, userID)
	if err != nil {
		return err
	}

	// redelivery under a new event id keeps the original row identity
	existing, err := s.SubRepo.GetByStripeID(ctx, sub.ID)
	if err != nil && !ierr.IsNotFound(err) {
		return err
	}
	if existing != nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.SubRepo.Upsert(ctx, record); err != nil {
			return err
		}
		return s.projectProfile(ctx, userID, func(p *profile.Profile) {
			p.SubscriptionTier = record.Tier
			p.SubscriptionStatus = record.Status
			p.SubscriptionStartedAt = types.UnixTimePtr(sub.Created)
			p.TrialEndsAt = record.TrialEnd
		})
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("subscription created",
		"user_id", userID,
		"stripe_subscription_id", sub.ID,
		"tier", record.Tier,
		"status", record.Status,
	)
	s.afterProjection(ctx, types.WebhookEventSubscriptionCreated, record)
	return nil
}

func (s *subscriptionProjector) OnUpdated(ctx context.Context, sub *stripe.Subscription) error {
	existing, err := s.SubRepo.GetByStripeID(ctx, sub.ID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return err
		}
		// the update arrived before the create
		if sub.UserID() == "" {
			s.Logger.Warnw("update for unknown subscription without user_id metadata, skipping",
				"stripe_subscription_id", sub.ID,
			)
			return nil
		}
		return s.OnCreated(ctx, sub)
	}

	record := *existing
	if item, ok := sub.FirstItem(); ok {
		record.Tier = s.resolver.Resolve(item.PlanID())
		record.BillingInterval = types.BillingIntervalFromProvider(item.Interval())
	}
	if sub.Customer != "" {
		record.StripeCustomerID = sub.Customer.String()
	}
	start, end := sub.PeriodBounds()
	record.Status = sub.SubscriptionStatus()
	record.CurrentPeriodStart = types.UnixTimePtr(start)
	record.CurrentPeriodEnd = types.UnixTimePtr(end)
	record.TrialEnd = types.UnixTimePtr(sub.TrialEnd)
	record.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
	record.CanceledAt = types.UnixTimePtr(sub.CanceledAt)
	record.Touch()

	if err := record.Validate(); err != nil {
		return err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.SubRepo.Update(ctx, &record); err != nil {
			return err
		}
		return s.projectProfile(ctx, record.UserID, func(p *profile.Profile) {
			p.SubscriptionTier = record.Tier
			p.SubscriptionStatus = record.Status
		})
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("subscription updated",
		"user_id", record.UserID,
		"stripe_subscription_id", sub.ID,
		"tier", record.Tier,
		"status", record.Status,
		"cancel_at_period_end", record.CancelAtPeriodEnd,
	)
	s.afterProjection(ctx, types.WebhookEventSubscriptionUpdated, &record)
	return nil
}

func (s *subscriptionProjector) OnDeleted(ctx context.Context, sub *stripe.Subscription) error {
	existing, err := s.SubRepo.GetByStripeID(ctx, sub.ID)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Warnw("delete for unknown subscription, skipping",
				"stripe_subscription_id", sub.ID,
			)
			return nil
		}
		return err
	}

	record := *existing
	record.Status = types.SubscriptionStatusCanceled
	record.CanceledAt = types.UnixTimePtr(sub.CanceledAt)
	if record.CanceledAt == nil {
		record.CanceledAt = lo.ToPtr(time.Now().UTC())
	}
	record.Touch()

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.SubRepo.Update(ctx, &record); err != nil {
			return err
		}
		// the tier is kept so a later resubscribe shows what the user had
		return s.projectProfile(ctx, record.UserID, func(p *profile.Profile) {
			p.SubscriptionStatus = types.SubscriptionStatusCanceled
		})
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("subscription canceled",
		"user_id", record.UserID,
		"stripe_subscription_id", sub.ID,
	)
	s.afterProjection(ctx, types.WebhookEventSubscriptionCanceled, &record)
	return nil
}

func (s *subscriptionProjector) OnInvoicePaid(ctx context.Context, inv *stripe.Invoice) error {
	customerID := inv.Customer.String()
	if customerID == "" {
		s.Logger.Warnw("paid invoice without customer, skipping", "stripe_invoice_id", inv.ID)
		return nil
	}

	cus, err := s.CustomerRepo.GetByStripeCustomerID(ctx, customerID)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Warnw("paid invoice for unknown customer, skipping",
				"stripe_invoice_id", inv.ID,
				"stripe_customer_id", customerID,
			)
			return nil
		}
		return err
	}

	paidAt := types.UnixTimePtr(inv.StatusTransitions.PaidAt)
	if paidAt == nil {
		paidAt = lo.ToPtr(time.Now().UTC())
	}

	record := &invoice.Invoice{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		UserID:           cus.UserID,
		StripeInvoiceID:  inv.ID,
		StripeCustomerID: customerID,
		AmountPaid:       inv.AmountPaid,
		Currency:         inv.Currency,
		Status:           types.InvoiceStatusPaid,
		PeriodStart:      types.UnixTimePtr(inv.PeriodStart),
		PeriodEnd:        types.UnixTimePtr(inv.PeriodEnd),
		PaidAt:           paidAt,
		CreatedAt:        time.Now().UTC(),
	}
	if inv.InvoicePDF != "" {
		record.InvoicePDF = lo.ToPtr(inv.InvoicePDF)
	}

	outcome, err := s.InvoiceRepo.CreateIfAbsent(ctx, record)
	if err != nil {
		return err
	}
	if outcome == types.RecordOutcomeDuplicate {
		s.Logger.Debugw("invoice already recorded", "stripe_invoice_id", inv.ID)
		return nil
	}

	s.Logger.Infow("invoice recorded",
		"user_id", cus.UserID,
		"stripe_invoice_id", inv.ID,
		"amount", record.Amount().String(),
		"currency", inv.Currency,
	)
	return nil
}

func (s *subscriptionProjector) OnInvoiceFailed(ctx context.Context, inv *stripe.Invoice) error {
	// dunning is driven by the provider; the subscription update that follows carries past_due
	s.Logger.Warnw("invoice payment failed",
		"stripe_invoice_id", inv.ID,
		"stripe_customer_id", inv.Customer.String(),
		"stripe_subscription_id", inv.Subscription.String(),
		"amount_due", inv.AmountDue,
		"attempt_count", inv.AttemptCount,
	)
	return nil
}

func (s *subscriptionProjector) buildSubscription(sub *stripe.Subscription, userID string) (*subscription.Subscription, error) {
	item, ok := sub.FirstItem()
	if !ok {
		return nil, ierr.NewError("subscription has no items").
			WithHint("Subscription payload has no items").
			WithReportableDetails(map[string]any{"stripe_subscription_id": sub.ID}).
			Mark(ierr.ErrValidation)
	}

	start, end := sub.PeriodBounds()
	record := &subscription.Subscription{
		ID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		UserID:               userID,
		StripeSubscriptionID: sub.ID,
		StripeCustomerID:     sub.Customer.String(),
		Tier:                 s.resolver.Resolve(item.PlanID()),
		Status:               sub.SubscriptionStatus(),
		BillingInterval:      types.BillingIntervalFromProvider(item.Interval()),
		CurrentPeriodStart:   types.UnixTimePtr(start),
		CurrentPeriodEnd:     types.UnixTimePtr(end),
		TrialEnd:             types.UnixTimePtr(sub.TrialEnd),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
		CanceledAt:           types.UnixTimePtr(sub.CanceledAt),
		BaseModel:            domain.NewBaseModel(),
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}

// projectProfile applies update to the user's profile, creating the row if
// the signup flow has not written it yet
func (s *subscriptionProjector) projectProfile(ctx context.Context, userID string, update profileUpdate) error {
	p, err := s.ProfileRepo.Get(ctx, userID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return err
		}
		p = profile.New(userID)
	}

	update(p)
	p.Touch()
	return s.ProfileRepo.Upsert(ctx, p)
}

// afterProjection invalidates cached reads and queues the change notification.
// Neither can fail the projection.
func (s *subscriptionProjector) afterProjection(ctx context.Context, eventName string, sub *subscription.Subscription) {
	s.profiles.Invalidate(ctx, sub.UserID)

	payload, err := json.Marshal(&webhookDto.SubscriptionWebhookPayload{
		UserID:               sub.UserID,
		StripeSubscriptionID: sub.StripeSubscriptionID,
		StripeCustomerID:     sub.StripeCustomerID,
		Tier:                 sub.Tier,
		Status:               sub.Status,
		BillingInterval:      sub.BillingInterval,
		CurrentPeriodEnd:     sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
		CanceledAt:           sub.CanceledAt,
	})
	if err != nil {
		s.Logger.Errorw("failed to marshal subscription notification", "error", err)
		return
	}

	event := &types.WebhookEvent{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WEBHOOK_EVENT),
		EventName: eventName,
		UserID:    sub.UserID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := s.WebhookPublisher.PublishWebhook(ctx, event); err != nil {
		s.Logger.Errorw("failed to publish subscription notification",
			"error", err,
			"event_name", eventName,
			"user_id", sub.UserID,
		)
	}
}
