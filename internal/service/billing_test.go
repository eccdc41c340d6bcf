package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/beautyops/beautyops/internal/api/dto"
	"github.com/beautyops/beautyops/internal/domain/customer"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/testutil"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/stretchr/testify/suite"
)

type BillingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillingService
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceSuite))
}

func (s *BillingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = s.newService()
}

func (s *BillingServiceSuite) newService() BillingService {
	params := newTestParams(&s.BaseServiceTestSuite)
	resolver := NewTierResolver(params.Config, params.Logger)
	profiles := NewProfileService(params)
	projector := NewSubscriptionProjector(params, resolver, profiles)
	return NewBillingService(params, NewEventStore(params), NewEventDispatcher(params, projector), resolver, profiles)
}

func (s *BillingServiceSuite) deliver(eventID, eventType string, object any) (*dto.WebhookResponse, error) {
	payload, signature := testutil.SignedWebhook(testutil.TestWebhookSecret, eventID, eventType, object)
	return s.service.ProcessWebhook(context.Background(), payload, signature)
}

func (s *BillingServiceSuite) TestWebhookSubscriptionCreated() {
	ctx := s.GetContext()
	userID := s.GetUUID()

	resp, err := s.deliver("evt_1", "customer.subscription.created",
		testutil.SubscriptionObject("sub_1", userID, testPriceProMonthly, "active", "month"))
	s.Require().NoError(err)
	s.Equal(types.WebhookResponseStatusSuccess, resp.Status)
	s.Equal("evt_1", resp.EventID)
	s.Equal("customer.subscription.created", resp.EventType)

	event, err := s.GetStores().BillingEventRepo.Get(ctx, "evt_1")
	s.Require().NoError(err)
	s.True(event.Processed)
	s.Nil(event.ErrorMessage)

	p, err := s.GetStores().ProfileRepo.Get(ctx, userID)
	s.Require().NoError(err)
	s.Equal(types.TierProAE, p.SubscriptionTier)
	s.Equal(types.SubscriptionStatusActive, p.SubscriptionStatus)
}

func (s *BillingServiceSuite) TestWebhookRedeliveryIsDuplicate() {
	ctx := s.GetContext()
	userID := s.GetUUID()
	object := testutil.SubscriptionObject("sub_1", userID, testPriceProMonthly, "active", "month")

	_, err := s.deliver("evt_1", "customer.subscription.created", object)
	s.Require().NoError(err)

	resp, err := s.deliver("evt_1", "customer.subscription.created", object)
	s.Require().NoError(err)
	s.Equal(types.WebhookResponseStatusDuplicate, resp.Status)

	s.Equal(1, s.GetStores().BillingEventRepo.Count())
	s.Equal(1, s.GetStores().SubscriptionRepo.Count())
	s.Len(s.GetWebhookPublisher().Events(), 1)

	event, err := s.GetStores().BillingEventRepo.Get(ctx, "evt_1")
	s.Require().NoError(err)
	s.True(event.Processed)
}

func (s *BillingServiceSuite) TestWebhookOutOfOrderDelivery() {
	ctx := s.GetContext()
	userID := s.GetUUID()

	_, err := s.deliver("evt_2", "customer.subscription.updated",
		testutil.SubscriptionObject("sub_1", userID, testPriceProMonthly, "active", "month"))
	s.Require().NoError(err)
	_, err = s.deliver("evt_1", "customer.subscription.created",
		testutil.SubscriptionObject("sub_1", userID, testPriceProMonthly, "active", "month"))
	s.Require().NoError(err)

	s.Equal(1, s.GetStores().SubscriptionRepo.Count())
	sub, err := s.GetStores().SubscriptionRepo.GetByStripeID(ctx, "sub_1")
	s.Require().NoError(err)
	s.Equal(types.TierProAE, sub.Tier)
}

func (s *BillingServiceSuite) TestWebhookUnhandledTypeIsProcessed() {
	ctx := s.GetContext()

	resp, err := s.deliver("evt_9", "customer.created", map[string]any{"id": "cus_1", "object": "customer"})
	s.Require().NoError(err)
	s.Equal(types.WebhookResponseStatusSuccess, resp.Status)

	event, err := s.GetStores().BillingEventRepo.Get(ctx, "evt_9")
	s.Require().NoError(err)
	s.True(event.Processed)
	s.Equal(0, s.GetStores().SubscriptionRepo.Count())
}

func (s *BillingServiceSuite) TestWebhookInvoicePaid() {
	ctx := s.GetContext()
	userID := s.GetUUID()
	s.Require().NoError(s.GetStores().CustomerRepo.Create(ctx, customer.New(userID, "cus_42", "")))

	_, err := s.deliver("evt_inv", "invoice.payment_succeeded", testutil.InvoiceObject("in_1", "cus_42", 2900, "usd"))
	s.Require().NoError(err)

	resp, err := s.service.ListInvoices(ctx, userID, 0)
	// the default context is a different user
	s.True(ierr.IsPermissionDenied(err))
	s.Nil(resp)

	resp, err = s.service.ListInvoices(types.SetUserID(ctx, userID), userID, 0)
	s.Require().NoError(err)
	s.Require().Len(resp.Invoices, 1)
	s.Equal("in_1", resp.Invoices[0].StripeInvoiceID)
	s.Equal("29", resp.Invoices[0].Amount.String())
}

func (s *BillingServiceSuite) TestWebhookSignatureErrors() {
	payload, signature := testutil.SignedWebhook("whsec_other", "evt_1", "customer.subscription.created",
		testutil.SubscriptionObject("sub_1", s.GetUUID(), testPriceProMonthly, "active", "month"))

	tests := []struct {
		name      string
		signature string
		hint      string
	}{
		{"missing header", "", "Missing Stripe-Signature header"},
		{"wrong secret", signature, "Invalid signature"},
		{"garbage header", "t=1,v1=deadbeef", "Invalid signature"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.ProcessWebhook(context.Background(), payload, tt.signature)
			s.Nil(resp)
			s.True(ierr.IsValidation(err))
			s.Equal(http.StatusBadRequest, ierr.HTTPStatusFromErr(err))
			s.Equal(tt.hint, ierr.DisplayMessage(err, ""))
		})
	}

	s.Equal(0, s.GetStores().BillingEventRepo.Count())
}

func (s *BillingServiceSuite) TestWebhookMissingSecret() {
	s.GetConfig().Stripe.WebhookSecret = ""
	service := s.newService()

	payload, signature := testutil.SignedWebhook(testutil.TestWebhookSecret, "evt_1", "customer.created", map[string]any{"id": "cus_1"})
	_, err := service.ProcessWebhook(context.Background(), payload, signature)
	s.Error(err)
	s.Equal(http.StatusInternalServerError, ierr.HTTPStatusFromErr(err))
	s.Equal("Webhook secret not configured", ierr.DisplayMessage(err, ""))
}

func (s *BillingServiceSuite) TestWebhookHandlerFailureMarksEventFailed() {
	ctx := s.GetContext()
	s.GetStores().SubscriptionRepo.Err = errors.New("connection reset")
	object := testutil.SubscriptionObject("sub_1", s.GetUUID(), testPriceProMonthly, "active", "month")

	_, err := s.deliver("evt_1", "customer.subscription.created", object)
	s.Require().Error(err)
	s.Equal(http.StatusInternalServerError, ierr.HTTPStatusFromErr(err))
	s.Contains(ierr.DisplayMessage(err, ""), "Webhook processing error")

	event, err := s.GetStores().BillingEventRepo.Get(ctx, "evt_1")
	s.Require().NoError(err)
	s.False(event.Processed)
	s.Require().NotNil(event.ErrorMessage)
	s.Contains(*event.ErrorMessage, "connection reset")

	// a failed event is not retried on redelivery
	s.GetStores().SubscriptionRepo.Err = nil
	resp, err := s.deliver("evt_1", "customer.subscription.created", object)
	s.Require().NoError(err)
	s.Equal(types.WebhookResponseStatusDuplicate, resp.Status)
	s.Equal(0, s.GetStores().SubscriptionRepo.Count())
}

func (s *BillingServiceSuite) TestWebhookMalformedObjectFails() {
	ctx := s.GetContext()

	_, err := s.deliver("evt_1", "customer.subscription.created", map[string]any{"object": "subscription"})
	s.Require().Error(err)

	event, err := s.GetStores().BillingEventRepo.Get(ctx, "evt_1")
	s.Require().NoError(err)
	s.NotNil(event.ErrorMessage)
}

func (s *BillingServiceSuite) TestCreateCheckoutSession() {
	ctx := s.GetContext()
	req := dto.CreateCheckoutSessionRequest{
		PriceID: testPriceProMonthly,
		UserID:  testutil.DefaultUserID,
	}

	resp, err := s.service.CreateCheckoutSession(ctx, req)
	s.Require().NoError(err)
	s.NotEmpty(resp.URL)

	_, err = s.service.CreateCheckoutSession(ctx, req)
	s.Require().NoError(err)

	gateway := s.GetStripe()
	s.Equal(1, gateway.CustomersCreated())
	s.Require().Len(gateway.Checkouts, 2)
	params := gateway.Checkouts[0]
	s.Equal("cus_test_1", params.CustomerID)
	s.Equal(testPriceProMonthly, params.PriceID)
	s.Equal(testutil.DefaultUserID, params.UserID)
	s.Equal("https://app.beautyops.test/billing?success=true", params.SuccessURL)
	s.Equal("https://app.beautyops.test/pricing", params.CancelURL)
	s.Equal(int64(14), params.TrialPeriodDays)

	cus, err := s.GetStores().CustomerRepo.GetByUserID(ctx, testutil.DefaultUserID)
	s.Require().NoError(err)
	s.Equal("cus_test_1", cus.StripeCustomerID)
	s.Equal(testutil.DefaultUserEmail, cus.Email)
}

func (s *BillingServiceSuite) TestCreateCheckoutSessionErrors() {
	ctx := s.GetContext()

	_, err := s.service.CreateCheckoutSession(ctx, dto.CreateCheckoutSessionRequest{UserID: testutil.DefaultUserID})
	s.True(ierr.IsValidation(err))

	_, err = s.service.CreateCheckoutSession(ctx, dto.CreateCheckoutSessionRequest{
		PriceID: testPriceProMonthly,
		UserID:  "someone-else",
	})
	s.True(ierr.IsPermissionDenied(err))

	s.GetStripe().Err = ierr.NewError("stripe down").Mark(ierr.ErrHTTPClient)
	_, err = s.service.CreateCheckoutSession(ctx, dto.CreateCheckoutSessionRequest{
		PriceID: testPriceProMonthly,
		UserID:  testutil.DefaultUserID,
	})
	s.True(ierr.IsHTTPClient(err))
	s.Equal(0, s.GetStores().CustomerRepo.Count())
}

func (s *BillingServiceSuite) TestCreatePortalSession() {
	ctx := s.GetContext()
	req := dto.CreatePortalSessionRequest{UserID: testutil.DefaultUserID}

	_, err := s.service.CreatePortalSession(ctx, req)
	s.True(ierr.IsNotFound(err))
	s.Equal("No billing account found", ierr.DisplayMessage(err, ""))

	s.Require().NoError(s.GetStores().CustomerRepo.Create(ctx, customer.New(testutil.DefaultUserID, "cus_42", "")))
	resp, err := s.service.CreatePortalSession(ctx, req)
	s.Require().NoError(err)
	s.Equal("https://billing.stripe.test/p/cus_42", resp.URL)
	s.Equal([]string{"cus_42"}, s.GetStripe().PortalSessions)
}

func (s *BillingServiceSuite) TestGetSubscription() {
	ctx := s.GetContext()

	resp, err := s.service.GetSubscription(ctx, testutil.DefaultUserID)
	s.Require().NoError(err)
	s.Nil(resp.Subscription)
	s.Equal(types.SubscriptionStatusNone, resp.Status)

	_, err = s.deliver("evt_1", "customer.subscription.created",
		testutil.SubscriptionObject("sub_1", testutil.DefaultUserID, testPriceProMonthly, "trialing", "month"))
	s.Require().NoError(err)

	resp, err = s.service.GetSubscription(ctx, testutil.DefaultUserID)
	s.Require().NoError(err)
	s.Require().NotNil(resp.Subscription)
	s.Equal("sub_1", resp.Subscription.StripeSubscriptionID)
	s.Equal(types.SubscriptionStatusTrialing, resp.Subscription.Status)

	_, err = s.service.GetSubscription(ctx, "someone-else")
	s.True(ierr.IsPermissionDenied(err))
}

func (s *BillingServiceSuite) TestListInvoicesLimit() {
	ctx := s.GetContext()
	s.Require().NoError(s.GetStores().CustomerRepo.Create(ctx, customer.New(testutil.DefaultUserID, "cus_42", "")))
	for _, id := range []string{"in_1", "in_2", "in_3"} {
		_, err := s.deliver("evt_"+id, "invoice.payment_succeeded", testutil.InvoiceObject(id, "cus_42", 2900, "usd"))
		s.Require().NoError(err)
	}

	resp, err := s.service.ListInvoices(ctx, testutil.DefaultUserID, 2)
	s.Require().NoError(err)
	s.Len(resp.Invoices, 2)

	resp, err = s.service.ListInvoices(ctx, testutil.DefaultUserID, 500)
	s.Require().NoError(err)
	s.Len(resp.Invoices, 3)
}
