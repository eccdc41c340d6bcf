package dto

import (
	"github.com/beautyops/beautyops/internal/types"
	"github.com/beautyops/beautyops/internal/validator"
)

type RecordUsageRequest struct {
	FeatureType types.FeatureType `json:"feature_type" validate:"required,feature"`
	Credits     int               `json:"credits" validate:"omitempty,min=1"`
	Metadata    types.Metadata    `json:"metadata,omitempty"`
}

func (r *RecordUsageRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// UsageStatsResponse reports the current month's usage against the tier limits.
// A limit of -1 means unlimited and 0 means the feature is not in the tier.
type UsageStatsResponse struct {
	Tier            types.Tier `json:"tier"`
	PosCreditsUsed  int        `json:"pos_credits_used"`
	PosCreditsLimit int        `json:"pos_credits_limit"`
	BriefingsUsed   int        `json:"briefings_used"`
	BriefingsLimit  int        `json:"briefings_limit"`
}

type AccessResponse struct {
	Feature types.FeatureType  `json:"feature"`
	Result  types.AccessResult `json:"result"`
	Allowed bool               `json:"allowed"`
	Reason  string             `json:"reason,omitempty"`
}

type RecordUsageResponse struct {
	ID          string            `json:"id"`
	FeatureType types.FeatureType `json:"feature_type"`
	CreditsUsed int               `json:"credits_used"`
}
