package service

import (
	"context"
	"strings"

	"github.com/beautyops/beautyops/internal/api/dto"
	"github.com/beautyops/beautyops/internal/domain/customer"
	"github.com/beautyops/beautyops/internal/domain/invoice"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/integration/stripe"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/samber/lo"
)

const (
	defaultInvoiceLimit = 12
	maxInvoiceLimit     = 100
)

// BillingService is the entry point for the billing routes
type BillingService interface {
	// ProcessWebhook verifies, records and applies one provider webhook delivery
	ProcessWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookResponse, error)
	CreateCheckoutSession(ctx context.Context, req dto.CreateCheckoutSessionRequest) (*dto.SessionURLResponse, error)
	CreatePortalSession(ctx context.Context, req dto.CreatePortalSessionRequest) (*dto.SessionURLResponse, error)
	GetSubscription(ctx context.Context, userID string) (*dto.SubscriptionResponse, error)
	ListInvoices(ctx context.Context, userID string, limit int) (*dto.ListInvoicesResponse, error)
}

type billingService struct {
	ServiceParams
	events     EventStore
	dispatcher EventDispatcher
	resolver   TierResolver
	profiles   ProfileService
}

func NewBillingService(
	params ServiceParams,
	events EventStore,
	dispatcher EventDispatcher,
	resolver TierResolver,
	profiles ProfileService,
) BillingService {
	return &billingService{
		ServiceParams: params,
		events:        events,
		dispatcher:    dispatcher,
		resolver:      resolver,
		profiles:      profiles,
	}
}

func (s *billingService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookResponse, error) {
	secret := s.Config.Stripe.WebhookSecret
	if secret == "" {
		s.Logger.Error("stripe webhook secret is not configured")
		return nil, ierr.NewError("webhook secret not configured").
			WithHint("Webhook secret not configured").
			Mark(ierr.ErrSystem)
	}

	event, err := stripe.VerifyEvent(payload, signature, secret)
	if err != nil {
		s.Logger.Warnw("rejected billing webhook", "error", err)
		return nil, err
	}

	span, ctx := s.Sentry.MonitorWebhookProcessing(ctx, event.Type, event.Created)
	if span != nil {
		defer span.Finish()
	}

	eventType := types.BillingEventType(event.Type)
	outcome, err := s.events.Record(ctx, event.ID, eventType, event.Object)
	if err != nil {
		return nil, err
	}

	response := &dto.WebhookResponse{
		Status:    types.WebhookResponseStatusSuccess,
		EventID:   event.ID,
		EventType: event.Type,
	}
	if outcome == types.RecordOutcomeDuplicate {
		response.Status = types.WebhookResponseStatusDuplicate
		return response, nil
	}

	result, err := s.dispatcher.Dispatch(ctx, event)
	if err != nil {
		s.Logger.Errorw("billing webhook handler failed",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err,
		)
		if markErr := s.events.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
			s.Logger.Errorw("failed to mark billing event failed",
				"event_id", event.ID,
				"error", markErr,
			)
		}
		s.Sentry.CaptureWebhookFailure(ctx, err, event.ID, event.Type)

		return nil, ierr.NewErrorf("webhook processing error: %v", err).
			WithHintf("Webhook processing error: %s", ierr.DisplayMessage(err, err.Error())).
			WithReportableDetails(map[string]any{
				"event_id":   event.ID,
				"event_type": event.Type,
			}).
			Mark(ierr.ErrSystem)
	}

	if err := s.events.MarkProcessed(ctx, event.ID); err != nil {
		// the projection is applied and idempotent, so a redelivery is harmless
		s.Logger.Errorw("failed to mark billing event processed",
			"event_id", event.ID,
			"error", err,
		)
		return nil, err
	}

	s.Logger.Infow("billing webhook processed",
		"event_id", event.ID,
		"event_type", event.Type,
		"handled", result.Handled,
	)
	return response, nil
}

func (s *billingService) CreateCheckoutSession(ctx context.Context, req dto.CreateCheckoutSessionRequest) (*dto.SessionURLResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ensureOwner(ctx, req.UserID); err != nil {
		return nil, err
	}

	if _, ok := s.resolver.Lookup(req.PriceID); !ok {
		s.Logger.Warnw("checkout requested for unmapped price", "price_id", req.PriceID)
	}

	email := req.Email
	if email == "" {
		email = types.GetUserEmail(ctx)
	}

	customerID, err := s.getOrCreateCustomer(ctx, req.UserID, email)
	if err != nil {
		return nil, err
	}

	frontend := strings.TrimRight(s.Config.Billing.FrontendURL, "/")
	url, err := s.Stripe.CreateCheckoutSession(ctx, stripe.CheckoutParams{
		CustomerID:      customerID,
		PriceID:         req.PriceID,
		UserID:          req.UserID,
		SuccessURL:      frontend + "/billing?success=true",
		CancelURL:       frontend + "/pricing",
		TrialPeriodDays: s.Config.Billing.TrialPeriodDays,
	})
	if err != nil {
		return nil, err
	}

	return &dto.SessionURLResponse{URL: url}, nil
}

func (s *billingService) CreatePortalSession(ctx context.Context, req dto.CreatePortalSessionRequest) (*dto.SessionURLResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ensureOwner(ctx, req.UserID); err != nil {
		return nil, err
	}

	cus, err := s.CustomerRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("no stripe customer for user").
				WithHint("No billing account found").
				WithReportableDetails(map[string]any{"user_id": req.UserID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}

	frontend := strings.TrimRight(s.Config.Billing.FrontendURL, "/")
	url, err := s.Stripe.CreatePortalSession(ctx, cus.StripeCustomerID, frontend+"/billing")
	if err != nil {
		return nil, err
	}

	return &dto.SessionURLResponse{URL: url}, nil
}

func (s *billingService) GetSubscription(ctx context.Context, userID string) (*dto.SubscriptionResponse, error) {
	if err := ensureOwner(ctx, userID); err != nil {
		return nil, err
	}

	sub, err := s.profiles.GetActiveSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &dto.SubscriptionResponse{Status: types.SubscriptionStatusNone}, nil
	}
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *billingService) ListInvoices(ctx context.Context, userID string, limit int) (*dto.ListInvoicesResponse, error) {
	if err := ensureOwner(ctx, userID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultInvoiceLimit
	}
	limit = lo.Min([]int{limit, maxInvoiceLimit})

	invoices, err := s.InvoiceRepo.ListByUserID(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	return &dto.ListInvoicesResponse{
		Invoices: lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
			return dto.NewInvoiceResponse(inv)
		}),
	}, nil
}

// getOrCreateCustomer returns the Stripe customer of userID, creating and
// recording one on first checkout
func (s *billingService) getOrCreateCustomer(ctx context.Context, userID, email string) (string, error) {
	existing, err := s.CustomerRepo.GetByUserID(ctx, userID)
	if err == nil {
		return existing.StripeCustomerID, nil
	}
	if !ierr.IsNotFound(err) {
		return "", err
	}

	stripeCustomerID, err := s.Stripe.CreateCustomer(ctx, userID, email)
	if err != nil {
		return "", err
	}

	if err := s.CustomerRepo.Create(ctx, customer.New(userID, stripeCustomerID, email)); err != nil {
		if !ierr.IsAlreadyExists(err) {
			return "", err
		}
		// a concurrent checkout recorded a customer first; use that one
		winner, getErr := s.CustomerRepo.GetByUserID(ctx, userID)
		if getErr != nil {
			return "", getErr
		}
		s.Logger.Warnw("discarding duplicate stripe customer",
			"user_id", userID,
			"stripe_customer_id", stripeCustomerID,
			"kept_stripe_customer_id", winner.StripeCustomerID,
		)
		return winner.StripeCustomerID, nil
	}

	return stripeCustomerID, nil
}

// ensureOwner rejects requests where the authenticated user differs from the
// user the request is about. Calls without an authenticated user pass.
func ensureOwner(ctx context.Context, userID string) error {
	caller := types.GetUserID(ctx)
	if caller == "" || caller == userID {
		return nil
	}
	return ierr.NewError("user does not own the requested resource").
		WithHint("Access denied").
		WithReportableDetails(map[string]any{"user_id": userID}).
		Mark(ierr.ErrPermissionDenied)
}
