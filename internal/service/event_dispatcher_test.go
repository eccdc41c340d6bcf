package service

import (
	"encoding/json"
	"testing"

	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/integration/stripe"
	"github.com/beautyops/beautyops/internal/testutil"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/stretchr/testify/suite"
)

type EventDispatcherSuite struct {
	testutil.BaseServiceTestSuite
	dispatcher EventDispatcher
}

func TestEventDispatcher(t *testing.T) {
	suite.Run(t, new(EventDispatcherSuite))
}

func (s *EventDispatcherSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestParams(&s.BaseServiceTestSuite)
	profiles := NewProfileService(params)
	projector := NewSubscriptionProjector(params, NewTierResolver(params.Config, params.Logger), profiles)
	s.dispatcher = NewEventDispatcher(params, projector)
}

func (s *EventDispatcherSuite) TestDispatch() {
	tests := []struct {
		name      string
		eventType string
		object    string
		handled   bool
		wantErr   bool
	}{
		{"unknown type", "charge.refunded", `{"id":"ch_1"}`, false, false},
		{"subscription created", "customer.subscription.created",
			`{"id":"sub_1","status":"active","metadata":{"user_id":"u1"},"items":[{"price":{"id":"price_x"}}]}`, true, false},
		{"legacy plan shape", "customer.subscription.updated",
			`{"id":"sub_2","metadata":{"user_id":"u2"},"items":{"data":[{"plan":{"id":"price_1SrMWs03NjWbp5DbTjJcBfS1","interval":"month"}}]}}`, true, false},
		{"invoice failed", "invoice.payment_failed", `{"id":"in_1","customer":{"id":"cus_1"}}`, true, false},
		{"missing id", "customer.subscription.deleted", `{"status":"canceled"}`, false, true},
		{"malformed object", "invoice.payment_succeeded", `{"id":42}`, false, true},
		{"no object", "customer.subscription.created", ``, false, true},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			result, err := s.dispatcher.Dispatch(s.GetContext(), &stripe.Event{
				ID:     "evt_" + tt.name,
				Type:   tt.eventType,
				Object: json.RawMessage(tt.object),
			})
			if tt.wantErr {
				s.True(ierr.IsValidation(err))
			} else {
				s.NoError(err)
			}
			s.Require().NotNil(result)
			s.Equal(types.BillingEventType(tt.eventType), result.EventType)
			s.Equal(tt.handled, result.Handled)
		})
	}

	sub, err := s.GetStores().SubscriptionRepo.GetByStripeID(s.GetContext(), "sub_2")
	s.Require().NoError(err)
	s.Equal(types.TierProAE, sub.Tier)
	s.Equal(types.BillingIntervalMonthly, sub.BillingInterval)
}
