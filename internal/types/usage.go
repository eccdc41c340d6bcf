package types

import (
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/samber/lo"
)

// FeatureType is a metered product feature
type FeatureType string

const (
	FeaturePOSAnalysis       FeatureType = "pos_analysis"
	FeatureBriefing          FeatureType = "briefing"
	FeatureTrainingGenerator FeatureType = "training_generator"
	FeatureContentAssistant  FeatureType = "content_assistant"
)

// UsageUnlimited marks a feature without a monthly cap
const UsageUnlimited = -1

func (f FeatureType) String() string {
	return string(f)
}

func (f FeatureType) Validate() error {
	allowed := []FeatureType{
		FeaturePOSAnalysis,
		FeatureBriefing,
		FeatureTrainingGenerator,
		FeatureContentAssistant,
	}
	if !lo.Contains(allowed, f) {
		return ierr.NewError("invalid feature type").
			WithHint("Unknown feature").
			WithReportableDetails(map[string]any{
				"feature_type":     f,
				"allowed_features": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// tierFeatureLimits holds the monthly credit cap per tier and feature.
// A feature missing from a tier's map is not available on that tier.
var tierFeatureLimits = map[Tier]map[FeatureType]int{
	TierSoloAE: {
		FeaturePOSAnalysis: 10,
		FeatureBriefing:    5,
	},
	TierProAE: {
		FeaturePOSAnalysis:       UsageUnlimited,
		FeatureBriefing:          UsageUnlimited,
		FeatureTrainingGenerator: UsageUnlimited,
		FeatureContentAssistant:  UsageUnlimited,
	},
	TierEnterprise: {
		FeaturePOSAnalysis:       UsageUnlimited,
		FeatureBriefing:          UsageUnlimited,
		FeatureTrainingGenerator: UsageUnlimited,
		FeatureContentAssistant:  UsageUnlimited,
	},
}

// FeatureLimit returns the monthly cap of a feature for a tier and whether
// the feature is part of the tier at all.
func FeatureLimit(tier Tier, feature FeatureType) (int, bool) {
	limits, ok := tierFeatureLimits[tier]
	if !ok {
		return 0, false
	}
	limit, ok := limits[feature]
	return limit, ok
}

// AccessResult is the outcome of a usage access check
type AccessResult string

const (
	AccessAllowed AccessResult = "allowed"
	AccessDenied  AccessResult = "denied"
	// AccessUnknown means usage could not be read. It is treated as allowed.
	AccessUnknown AccessResult = "unknown"
)

func (a AccessResult) String() string {
	return string(a)
}

// MinimumTierFor returns the lowest tier that includes feature
func MinimumTierFor(feature FeatureType) (Tier, bool) {
	for _, tier := range []Tier{TierSoloAE, TierProAE, TierEnterprise} {
		if _, ok := FeatureLimit(tier, feature); ok {
			return tier, true
		}
	}
	return "", false
}
