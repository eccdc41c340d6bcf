package subscription

import (
	"context"
)

// Repository defines the interface for subscription data access
type Repository interface {
	// Upsert inserts or replaces the row keyed by StripeSubscriptionID
	Upsert(ctx context.Context, sub *Subscription) error
	GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
	// GetActiveByUserID returns the most recently updated active or trialing subscription
	GetActiveByUserID(ctx context.Context, userID string) (*Subscription, error)
}
