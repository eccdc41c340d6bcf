package customer

import (
	"time"

	"github.com/beautyops/beautyops/internal/types"
)

// Customer maps an application user to their Stripe customer
type Customer struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	StripeCustomerID string    `db:"stripe_customer_id" json:"stripe_customer_id"`
	Email            string    `db:"email" json:"email"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

func New(userID, stripeCustomerID, email string) *Customer {
	return &Customer{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_STRIPE_CUSTOMER),
		UserID:           userID,
		StripeCustomerID: stripeCustomerID,
		Email:            email,
		CreatedAt:        time.Now().UTC(),
	}
}
