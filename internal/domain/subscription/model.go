package subscription

import (
	"time"

	"github.com/beautyops/beautyops/internal/domain"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/types"
)

// Subscription is the local record of a provider subscription
type Subscription struct {
	ID                   string                   `db:"id" json:"id"`
	UserID               string                   `db:"user_id" json:"user_id"`
	StripeSubscriptionID string                   `db:"stripe_subscription_id" json:"stripe_subscription_id"`
	StripeCustomerID     string                   `db:"stripe_customer_id" json:"stripe_customer_id"`
	Tier                 types.Tier               `db:"subscription_tier" json:"subscription_tier"`
	Status               types.SubscriptionStatus `db:"status" json:"status"`
	BillingInterval      types.BillingInterval    `db:"billing_interval" json:"billing_interval"`
	CurrentPeriodStart   *time.Time               `db:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd     *time.Time               `db:"current_period_end" json:"current_period_end"`
	TrialEnd             *time.Time               `db:"trial_end" json:"trial_end"`
	CancelAtPeriodEnd    bool                     `db:"cancel_at_period_end" json:"cancel_at_period_end"`
	CanceledAt           *time.Time               `db:"canceled_at" json:"canceled_at"`

	domain.BaseModel
}

func (s *Subscription) Validate() error {
	if s.UserID == "" {
		return ierr.NewError("user id is required").
			WithHint("Subscription must belong to a user").
			Mark(ierr.ErrValidation)
	}
	if s.StripeSubscriptionID == "" {
		return ierr.NewError("stripe subscription id is required").
			WithHint("Subscription must reference a provider subscription").
			Mark(ierr.ErrValidation)
	}
	if err := s.Status.Validate(); err != nil {
		return err
	}
	return nil
}

// IsActive reports whether the subscription currently grants access
func (s *Subscription) IsActive() bool {
	return s != nil && s.Status.IsActive()
}
