package profile

import (
	"time"

	"github.com/beautyops/beautyops/internal/domain"
	"github.com/beautyops/beautyops/internal/types"
)

// Profile is the user profile row. The subscription fields are a projection
// of the user's subscription and are written only by the projector.
type Profile struct {
	UserID                string                   `db:"user_id" json:"user_id"`
	Email                 string                   `db:"email" json:"email"`
	FullName              string                   `db:"full_name" json:"full_name"`
	Company               string                   `db:"company" json:"company"`
	SubscriptionTier      types.Tier               `db:"subscription_tier" json:"subscription_tier"`
	SubscriptionStatus    types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`
	SubscriptionStartedAt *time.Time               `db:"subscription_started_at" json:"subscription_started_at"`
	TrialEndsAt           *time.Time               `db:"trial_ends_at" json:"trial_ends_at"`

	domain.BaseModel
}

// New returns an empty profile for userID with no subscription
func New(userID string) *Profile {
	return &Profile{
		UserID:             userID,
		SubscriptionStatus: types.SubscriptionStatusNone,
		BaseModel:          domain.NewBaseModel(),
	}
}

// EffectiveTier is the tier to gate on. Profiles without a tier, or whose
// subscription no longer grants access, get the lowest tier. past_due keeps
// the tier while the provider retries the payment.
func (p *Profile) EffectiveTier() types.Tier {
	if p == nil || p.SubscriptionTier == "" {
		return types.TierLowest
	}
	if !p.SubscriptionStatus.IsActive() && p.SubscriptionStatus != types.SubscriptionStatusPastDue {
		return types.TierLowest
	}
	return p.SubscriptionTier
}
