package service

import (
	"testing"

	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestTierResolver(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Billing.PriceTiers = []config.PriceTierConfig{
		{PriceID: "price_Enterprise_Monthly", Tier: types.TierEnterprise},
		{PriceID: testPriceSoloMonthly, Tier: types.TierProAE},
		{PriceID: "price_broken", Tier: types.Tier("gold")},
		{PriceID: "", Tier: types.TierProAE},
	}
	resolver := NewTierResolver(cfg, logger.NewNopLogger())

	tests := []struct {
		name    string
		planID  string
		want    types.Tier
		wantHit bool
	}{
		{"default pro monthly", testPriceProMonthly, types.TierProAE, true},
		{"default pro annual", testPriceProAnnual, types.TierProAE, true},
		{"configured entry", "price_Enterprise_Monthly", types.TierEnterprise, true},
		{"configured entry is case sensitive", "price_enterprise_monthly", types.TierLowest, false},
		{"config overrides default", testPriceSoloMonthly, types.TierProAE, true},
		{"invalid tier is skipped", "price_broken", types.TierLowest, false},
		{"unknown id", "price_unknown", types.TierLowest, false},
		{"empty id", "", types.TierLowest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.Resolve(tt.planID))
			_, ok := resolver.Lookup(tt.planID)
			assert.Equal(t, tt.wantHit, ok)
		})
	}
}
