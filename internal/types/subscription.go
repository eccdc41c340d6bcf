package types

import (
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus mirrors Stripe's subscription statuses plus "none"
// for users that never subscribed.
// https://stripe.com/docs/api/subscriptions/object#subscription_object-status
type SubscriptionStatus string

const (
	SubscriptionStatusNone              SubscriptionStatus = "none"
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionStatusPaused            SubscriptionStatus = "paused"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsActive reports whether the subscription currently grants access.
// Trialing subscriptions count as active.
func (s SubscriptionStatus) IsActive() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusNone,
		SubscriptionStatusTrialing,
		SubscriptionStatusActive,
		SubscriptionStatusPastDue,
		SubscriptionStatusUnpaid,
		SubscriptionStatusIncomplete,
		SubscriptionStatusIncompleteExpired,
		SubscriptionStatusPaused,
		SubscriptionStatusCanceled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription status").
			WithHint("Invalid subscription status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillingInterval is the recurring cadence of a subscription
type BillingInterval string

const (
	BillingIntervalMonthly BillingInterval = "monthly"
	BillingIntervalYearly  BillingInterval = "yearly"
)

func (b BillingInterval) String() string {
	return string(b)
}

// BillingIntervalFromProvider converts a Stripe recurring interval.
// Only "month" is monthly, everything else is billed yearly.
func BillingIntervalFromProvider(interval string) BillingInterval {
	if interval == "month" {
		return BillingIntervalMonthly
	}
	return BillingIntervalYearly
}

// InvoiceStatus is the status of an invoice stored by the projector
type InvoiceStatus string

const (
	InvoiceStatusPaid InvoiceStatus = "paid"
)
