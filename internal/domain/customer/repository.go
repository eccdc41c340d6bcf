package customer

import (
	"context"
)

// Repository defines the interface for customer mapping data access
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByUserID(ctx context.Context, userID string) (*Customer, error)
	GetByStripeCustomerID(ctx context.Context, stripeCustomerID string) (*Customer, error)
}
