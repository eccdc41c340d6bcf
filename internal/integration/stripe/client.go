package stripe

import (
	"context"

	"github.com/beautyops/beautyops/internal/config"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/logger"
	stripeapi "github.com/stripe/stripe-go/v82"
)

// Gateway is the subset of the Stripe API the billing service calls
type Gateway interface {
	CreateCustomer(ctx context.Context, userID, email string) (string, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

// Client implements Gateway with the official SDK
type Client struct {
	api    *stripeapi.Client
	logger *logger.Logger
}

// NewClient creates a Stripe client for the configured secret key
func NewClient(cfg *config.Configuration, logger *logger.Logger) Gateway {
	if cfg.Stripe.SecretKey == "" {
		logger.Warn("stripe secret key not configured, billing session routes will fail")
	}
	return &Client{
		api:    stripeapi.NewClient(cfg.Stripe.SecretKey, nil),
		logger: logger,
	}
}

func (c *Client) CreateCustomer(ctx context.Context, userID, email string) (string, error) {
	params := &stripeapi.CustomerCreateParams{
		Metadata: map[string]string{"user_id": userID},
	}
	if email != "" {
		params.Email = stripeapi.String(email)
	}

	cus, err := c.api.V1Customers.Create(ctx, params)
	if err != nil {
		c.logger.Errorw("failed to create Stripe customer", "user_id", userID, "error", err)
		return "", ierr.WithError(err).
			WithHint("Unable to create Stripe customer").
			WithReportableDetails(map[string]any{"user_id": userID}).
			Mark(ierr.ErrHTTPClient)
	}

	c.logger.Infow("created Stripe customer", "user_id", userID, "stripe_customer_id", cus.ID)
	return cus.ID, nil
}

func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (string, error) {
	metadata := map[string]string{"user_id": p.UserID}

	params := &stripeapi.CheckoutSessionCreateParams{
		Mode:       stripeapi.String(string(stripeapi.CheckoutSessionModeSubscription)),
		Customer:   stripeapi.String(p.CustomerID),
		SuccessURL: stripeapi.String(p.SuccessURL),
		CancelURL:  stripeapi.String(p.CancelURL),
		Metadata:   metadata,
		LineItems: []*stripeapi.CheckoutSessionCreateLineItemParams{
			{
				Price:    stripeapi.String(p.PriceID),
				Quantity: stripeapi.Int64(1),
			},
		},
		SubscriptionData: &stripeapi.CheckoutSessionCreateSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	if p.TrialPeriodDays > 0 {
		params.SubscriptionData.TrialPeriodDays = stripeapi.Int64(p.TrialPeriodDays)
	}

	session, err := c.api.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		c.logger.Errorw("failed to create Stripe checkout session",
			"user_id", p.UserID,
			"price_id", p.PriceID,
			"error", err,
		)
		return "", ierr.WithError(err).
			WithHint("Unable to create Stripe checkout session").
			WithReportableDetails(map[string]any{"price_id": p.PriceID}).
			Mark(ierr.ErrHTTPClient)
	}

	return session.URL, nil
}

func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	session, err := c.api.V1BillingPortalSessions.Create(ctx, &stripeapi.BillingPortalSessionCreateParams{
		Customer:  stripeapi.String(customerID),
		ReturnURL: stripeapi.String(returnURL),
	})
	if err != nil {
		c.logger.Errorw("failed to create Stripe portal session", "stripe_customer_id", customerID, "error", err)
		return "", ierr.WithError(err).
			WithHint("Unable to create billing portal session").
			Mark(ierr.ErrHTTPClient)
	}
	return session.URL, nil
}
