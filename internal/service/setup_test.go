package service

import (
	"github.com/beautyops/beautyops/internal/testutil"
)

const (
	testPriceSoloMonthly = "price_1SrOOH03NjWbp5DbcEqGXxbS"
	testPriceProMonthly  = "price_1SrMWs03NjWbp5DbTjJcBfS1"
	testPriceProAnnual   = "price_1SrOTa03NjWbp5Db9workK1L"
)

// newTestParams wires ServiceParams over the suite's in-memory stores
func newTestParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetDB(),
		s.GetCache(),
		s.GetSentry(),
		stores.BillingEventRepo,
		stores.SubscriptionRepo,
		stores.ProfileRepo,
		stores.InvoiceRepo,
		stores.CustomerRepo,
		stores.UsageRepo,
		s.GetWebhookPublisher(),
		s.GetStripe(),
	)
}
