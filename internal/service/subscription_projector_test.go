package service

import (
	"errors"
	"testing"

	"github.com/beautyops/beautyops/internal/domain/customer"
	"github.com/beautyops/beautyops/internal/integration/stripe"
	"github.com/beautyops/beautyops/internal/testutil"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/stretchr/testify/suite"
)

type SubscriptionProjectorSuite struct {
	testutil.BaseServiceTestSuite
	projector SubscriptionProjector
	profiles  ProfileService
}

func TestSubscriptionProjector(t *testing.T) {
	suite.Run(t, new(SubscriptionProjectorSuite))
}

func (s *SubscriptionProjectorSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestParams(&s.BaseServiceTestSuite)
	s.profiles = NewProfileService(params)
	s.projector = NewSubscriptionProjector(params, NewTierResolver(params.Config, params.Logger), s.profiles)
}

func newStripeSubscription(id, userID, priceID, status, interval string) *stripe.Subscription {
	metadata := map[string]string{}
	if userID != "" {
		metadata["user_id"] = userID
	}
	return &stripe.Subscription{
		ID:                 id,
		Customer:           stripe.ExpandableID("cus_" + id),
		Status:             status,
		Metadata:           metadata,
		Created:            1700000000,
		CurrentPeriodStart: 1700000000,
		CurrentPeriodEnd:   1702592000,
		Items: stripe.SubscriptionItems{
			{
				ID:    "si_" + id,
				Price: &stripe.Price{ID: priceID, Recurring: &stripe.Recurring{Interval: interval}},
			},
		},
	}
}

func (s *SubscriptionProjectorSuite) TestOnCreated() {
	ctx := s.GetContext()
	userID := s.GetUUID()

	err := s.projector.OnCreated(ctx, newStripeSubscription("sub_1", userID, testPriceProMonthly, "active", "month"))
	s.Require().NoError(err)

	sub, err := s.GetStores().SubscriptionRepo.GetByStripeID(ctx, "sub_1")
	s.Require().NoError(err)
	s.Equal(userID, sub.UserID)
	s.Equal("cus_sub_1", sub.StripeCustomerID)
	s.Equal(types.TierProAE, sub.Tier)
	s.Equal(types.SubscriptionStatusActive, sub.Status)
	s.Equal(types.BillingIntervalMonthly, sub.BillingInterval)
	s.Require().NotNil(sub.CurrentPeriodEnd)
	s.Equal(int64(1702592000), sub.CurrentPeriodEnd.Unix())
	s.Nil(sub.TrialEnd)

	p, err := s.GetStores().ProfileRepo.Get(ctx, userID)
	s.Require().NoError(err)
	s.Equal(types.TierProAE, p.SubscriptionTier)
	s.Equal(types.SubscriptionStatusActive, p.SubscriptionStatus)
	s.Require().NotNil(p.SubscriptionStartedAt)
	s.Equal(int64(1700000000), p.SubscriptionStartedAt.Unix())

	s.Equal(1, s.GetDB().Calls)
	s.Equal([]string{types.WebhookEventSubscriptionCreated}, s.GetWebhookPublisher().EventNames())
	s.Equal(userID, s.GetWebhookPublisher().Events()[0].UserID)
}

func (s *SubscriptionProjectorSuite) TestOnCreatedKeepsExistingProfileFields() {
	ctx := s.GetContext()
	userID := s.GetUUID()
	seeded := s.CreateProfile(userID, "", types.SubscriptionStatusNone)
	seeded.Email = "owner@clinic.test"
	s.Require().NoError(s.GetStores().ProfileRepo.Upsert(ctx, seeded))

	s.Require().NoError(s.projector.OnCreated(ctx, newStripeSubscription("sub_1", userID, testPriceSoloMonthly, "trialing", "month")))

	p, err := s.GetStores().ProfileRepo.Get(ctx, userID)
	s.Require().NoError(err)
	s.Equal("owner@clinic.test", p.Email)
	s.Equal(types.TierSoloAE, p.SubscriptionTier)
	s.Equal(types.SubscriptionStatusTrialing, p.SubscriptionStatus)
}

func (s *SubscriptionProjectorSuite) TestOnCreatedWithoutUserID() {
	ctx := s.GetContext()

	s.NoError(s.projector.OnCreated(ctx, newStripeSubscription("sub_1", "", testPriceProMonthly, "active", "month")))

	s.Equal(0, s.GetStores().SubscriptionRepo.Count())
	s.Equal(0, s.GetStores().ProfileRepo.Count())
	s.Empty(s.GetWebhookPublisher().Events())
}

func (s *SubscriptionProjectorSuite) TestOnCreatedUnknownPrice() {
	ctx := s.GetContext()
	userID := s.GetUUID()

	s.Require().NoError(s.projector.OnCreated(ctx, newStripeSubscription("sub_1", userID, "price_retired", "active", "year")))

	sub, err := s.GetStores().SubscriptionRepo.GetByStripeID(ctx, "sub_1")
	s.Require().NoError(err)
	s.Equal(types.TierLowest, sub.Tier)
	s.Equal(types.BillingIntervalYearly, sub.BillingInterval)
}

func (s *SubscriptionProjectorSuite) TestOnCreatedWithoutItems() {
	ctx := s.GetContext()
	sub := newStripeSubscription("sub_1", s.GetUUID(), testPriceProMonthly, "active", "month")
	sub.Items = nil

	s.Error(s.projector.OnCreated(ctx, sub))
	s.Equal(0, s.GetStores().SubscriptionRepo.Count())
}

func (s *SubscriptionProjectorSuite) TestOnCreatedRedeliveryKeepsRowIdentity() {
	ctx := s.GetContext()
	userID := s.GetUUID()
	payload := newStripeSubscription("sub_1", userID, testPriceProMonthly, "active", "month")

	s.Require().NoError(s.projector.OnCreated(ctx, payload))
	first, err := s.GetStores().SubscriptionRepo.GetByStripeID(ctx, "sub_1")
	s.Require().NoError(err)

	s.Require().NoError(s.projector.OnCreated(ctx, payload))
	second, err := s.GetStores().SubscriptionRepo.GetByStripeID(ctx, "sub_1")
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(first.CreatedAt, second.CreatedAt)
	s.Equal(1, s.GetStores().SubscriptionRepo.Count())
}

func (s *SubscriptionProjectorSuite) TestOnUpdatedChangesPlan() {
	ctx := s.GetContext()
	userID := s.GetUUID()
	s.Require().NoError(s.projector.OnCreated(ctx, newStripeSubscription("sub_1", userID, testPriceSoloMonthly, "active", "month")))
	created, err := s.GetStores().SubscriptionRepo.GetByStripeID(ctx, "sub_1")
	s.Require().NoError(err)

	update := newStripeSubscription("sub_1", userID, testPriceProAnnual, "active", "year")
	update.CancelAtPeriodEnd = true
	s.Require().NoError(s.projector.OnUpdated(ctx, update))

	sub, err := s.GetStores().SubscriptionRepo.GetByStripeID(ctx, "sub_1")
	s.Require().NoError(err)
	s.Equal(created.ID, sub.ID)
	s.Equal(types.TierProAE, sub.Tier)
	s.Equal(types.BillingIntervalYearly, sub.BillingInterval)
	s.True(sub.CancelAtPeriodEnd)

	p, err := s.GetStores().ProfileRepo.Get(ctx, userID)
	s.Require().NoError(err)
	s.Equal(types.TierProAE, p.SubscriptionTier)

	s.Equal([]string{
		types.WebhookEventSubscriptionCreated,
		types.WebhookEventSubscriptionUpdated,
	}, s.GetWebhookPublisher().EventNames())
}

func (s *SubscriptionProjectorSuite) TestOnUpdatedBeforeCreated() {
	ctx := s.GetContext()
	userID := s.GetUUID()

	s.Require().NoError(s.projector.OnUpdated(ctx, newStripeSubscription("sub_1", userID, testPriceProMonthly, "active", "month")))

	sub, err := s.GetStores().SubscriptionRepo.GetByStripeID(ctx, "sub_1")
	s.Require().NoError(err)
	s.Equal(userID, sub.UserID)
	s.Equal(types.TierProAE, sub.Tier)
}

func (s *SubscriptionProjectorSuite) TestOnUpdatedUnknownWithoutUserID() {
	ctx := s.GetContext()

	s.NoError(s.projector.OnUpdated(ctx, newStripeSubscription("sub_1", "", testPriceProMonthly, "active", "month")))
	s.Equal(0, s.GetStores().SubscriptionRepo.Count())
}

func (s *SubscriptionProjectorSuite) TestOnUpdatedPastDueKeepsTier() {
	ctx := s.GetContext()
	userID := s.GetUUID()
	s.Require().NoError(s.projector.OnCreated(ctx, newStripeSubscription("sub_1", userID, testPriceProMonthly, "active", "month")))

	s.Require().NoError(s.projector.OnUpdated(ctx, newStripeSubscription("sub_1", userID, testPriceProMonthly, "past_due", "month")))

	p, err := s.GetStores().ProfileRepo.Get(ctx, userID)
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusPastDue, p.SubscriptionStatus)
	s.Equal(types.TierProAE, p.EffectiveTier())
}

func (s *SubscriptionProjectorSuite) TestOnDeleted() {
	ctx := s.GetContext()
	userID := s.GetUUID()
	s.Require().NoError(s.projector.OnCreated(ctx, newStripeSubscription("sub_1", userID, testPriceProMonthly, "active", "month")))

	deleted := newStripeSubscription("sub_1", userID, testPriceProMonthly, "canceled", "month")
	deleted.CanceledAt = 1701000000
	s.Require().NoError(s.projector.OnDeleted(ctx, deleted))

	sub, err := s.GetStores().SubscriptionRepo.GetByStripeID(ctx, "sub_1")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusCanceled, sub.Status)
	s.Equal(types.TierProAE, sub.Tier)
	s.Require().NotNil(sub.CanceledAt)
	s.Equal(int64(1701000000), sub.CanceledAt.Unix())

	p, err := s.GetStores().ProfileRepo.Get(ctx, userID)
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusCanceled, p.SubscriptionStatus)
	s.Equal(types.TierProAE, p.SubscriptionTier)
	s.Equal(types.TierLowest, p.EffectiveTier())

	s.Contains(s.GetWebhookPublisher().EventNames(), types.WebhookEventSubscriptionCanceled)
}

func (s *SubscriptionProjectorSuite) TestOnDeletedWithoutCanceledAt() {
	ctx := s.GetContext()
	userID := s.GetUUID()
	s.Require().NoError(s.projector.OnCreated(ctx, newStripeSubscription("sub_1", userID, testPriceProMonthly, "active", "month")))

	s.Require().NoError(s.projector.OnDeleted(ctx, newStripeSubscription("sub_1", userID, testPriceProMonthly, "canceled", "month")))

	sub, err := s.GetStores().SubscriptionRepo.GetByStripeID(ctx, "sub_1")
	s.Require().NoError(err)
	s.NotNil(sub.CanceledAt)
}

func (s *SubscriptionProjectorSuite) TestOnDeletedUnknownSubscription() {
	ctx := s.GetContext()

	s.NoError(s.projector.OnDeleted(ctx, newStripeSubscription("sub_missing", s.GetUUID(), testPriceProMonthly, "canceled", "month")))
	s.Equal(0, s.GetStores().SubscriptionRepo.Count())
	s.Empty(s.GetWebhookPublisher().Events())
}

func (s *SubscriptionProjectorSuite) TestProjectionInvalidatesCachedProfile() {
	ctx := s.GetContext()
	userID := s.GetUUID()
	s.CreateProfile(userID, types.TierSoloAE, types.SubscriptionStatusActive)

	cached, err := s.profiles.GetProfile(ctx, userID)
	s.Require().NoError(err)
	s.Equal(types.TierSoloAE, cached.SubscriptionTier)

	s.Require().NoError(s.projector.OnCreated(ctx, newStripeSubscription("sub_1", userID, testPriceProMonthly, "active", "month")))

	fresh, err := s.profiles.GetProfile(ctx, userID)
	s.Require().NoError(err)
	s.Equal(types.TierProAE, fresh.SubscriptionTier)
}

func (s *SubscriptionProjectorSuite) TestPublishFailureDoesNotFailProjection() {
	ctx := s.GetContext()
	userID := s.GetUUID()
	s.GetWebhookPublisher().Err = errors.New("broker unavailable")

	s.NoError(s.projector.OnCreated(ctx, newStripeSubscription("sub_1", userID, testPriceProMonthly, "active", "month")))

	_, err := s.GetStores().SubscriptionRepo.GetByStripeID(ctx, "sub_1")
	s.NoError(err)
}

func (s *SubscriptionProjectorSuite) TestWriteFailureIsReturned() {
	ctx := s.GetContext()
	userID := s.GetUUID()
	s.GetStores().SubscriptionRepo.Err = errors.New("connection reset")

	s.Error(s.projector.OnCreated(ctx, newStripeSubscription("sub_1", userID, testPriceProMonthly, "active", "month")))

	s.Equal(0, s.GetStores().ProfileRepo.Count())
	s.Empty(s.GetWebhookPublisher().Events())
}

func (s *SubscriptionProjectorSuite) TestOnInvoicePaid() {
	ctx := s.GetContext()
	userID := s.GetUUID()
	s.Require().NoError(s.GetStores().CustomerRepo.Create(ctx, customer.New(userID, "cus_42", "")))

	inv := &stripe.Invoice{
		ID:                "in_1",
		Customer:          "cus_42",
		AmountPaid:        2900,
		Currency:          "usd",
		InvoicePDF:        "https://pay.stripe.test/in_1.pdf",
		PeriodStart:       1700000000,
		PeriodEnd:         1702592000,
		StatusTransitions: stripe.StatusTransitions{PaidAt: 1700000100},
	}
	s.Require().NoError(s.projector.OnInvoicePaid(ctx, inv))
	s.Require().NoError(s.projector.OnInvoicePaid(ctx, inv))

	invoices, err := s.GetStores().InvoiceRepo.ListByUserID(ctx, userID, 10)
	s.Require().NoError(err)
	s.Require().Len(invoices, 1)
	s.Equal("in_1", invoices[0].StripeInvoiceID)
	s.Equal(types.InvoiceStatusPaid, invoices[0].Status)
	s.Equal("29", invoices[0].Amount().String())
	s.Require().NotNil(invoices[0].PaidAt)
	s.Equal(int64(1700000100), invoices[0].PaidAt.Unix())
	s.Require().NotNil(invoices[0].InvoicePDF)
}

func (s *SubscriptionProjectorSuite) TestOnInvoicePaidUnknownCustomer() {
	ctx := s.GetContext()

	s.NoError(s.projector.OnInvoicePaid(ctx, &stripe.Invoice{ID: "in_1", Customer: "cus_nobody", AmountPaid: 2900, Currency: "usd"}))
	s.Equal(0, s.GetStores().InvoiceRepo.Count())
}

func (s *SubscriptionProjectorSuite) TestOnInvoiceFailedWritesNothing() {
	ctx := s.GetContext()

	s.NoError(s.projector.OnInvoiceFailed(ctx, &stripe.Invoice{ID: "in_1", Customer: "cus_42", AmountDue: 2900, AttemptCount: 2}))
	s.Equal(0, s.GetStores().InvoiceRepo.Count())
	s.Empty(s.GetWebhookPublisher().Events())
}
