package service

import (
	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/types"
)

// DefaultPriceTiers maps the production Stripe price ids to tiers
var DefaultPriceTiers = map[string]types.Tier{
	"price_1SrOOH03NjWbp5DbcEqGXxbS": types.TierSoloAE, // Solo AE monthly
	"price_1SrOSl03NjWbp5DbC9qZ931h": types.TierSoloAE, // Solo AE annual
	"price_1SrMWs03NjWbp5DbTjJcBfS1": types.TierProAE,  // Pro AE monthly
	"price_1SrOTa03NjWbp5Db9workK1L": types.TierProAE,  // Pro AE annual
}

// TierResolver maps a provider plan or price id to a subscription tier
type TierResolver interface {
	// Resolve never fails: unknown ids resolve to the lowest tier
	Resolve(planID string) types.Tier
	Lookup(planID string) (types.Tier, bool)
}

type tierResolver struct {
	tiers  map[string]types.Tier
	logger *logger.Logger
}

// NewTierResolver builds the mapping from the defaults plus billing.price_tiers.
// Configured entries override defaults; entries with an invalid tier are skipped.
func NewTierResolver(cfg *config.Configuration, logger *logger.Logger) TierResolver {
	tiers := make(map[string]types.Tier, len(DefaultPriceTiers)+len(cfg.Billing.PriceTiers))
	for id, tier := range DefaultPriceTiers {
		tiers[id] = tier
	}

	for _, entry := range cfg.Billing.PriceTiers {
		if entry.PriceID == "" {
			continue
		}
		if err := entry.Tier.Validate(); err != nil {
			logger.Warnw("ignoring price tier mapping with invalid tier",
				"price_id", entry.PriceID,
				"tier", entry.Tier,
			)
			continue
		}
		tiers[entry.PriceID] = entry.Tier
	}

	return &tierResolver{tiers: tiers, logger: logger}
}

func (r *tierResolver) Lookup(planID string) (types.Tier, bool) {
	tier, ok := r.tiers[planID]
	return tier, ok
}

func (r *tierResolver) Resolve(planID string) types.Tier {
	if tier, ok := r.tiers[planID]; ok {
		return tier
	}
	r.logger.Warnw("unknown plan id, falling back to lowest tier",
		"plan_id", planID,
		"tier", types.TierLowest,
	)
	return types.TierLowest
}
