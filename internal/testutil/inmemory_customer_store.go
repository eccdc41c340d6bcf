package testutil

import (
	"context"

	"github.com/beautyops/beautyops/internal/domain/customer"
	ierr "github.com/beautyops/beautyops/internal/errors"
)

// InMemoryCustomerStore implements customer.Repository keyed by user id
type InMemoryCustomerStore struct {
	*InMemoryStore[*customer.Customer]
}

func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{
		InMemoryStore: NewInMemoryStore[*customer.Customer](),
	}
}

func copyCustomer(c *customer.Customer) *customer.Customer {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func (s *InMemoryCustomerStore) Create(ctx context.Context, c *customer.Customer) error {
	if _, err := s.GetByStripeCustomerID(ctx, c.StripeCustomerID); err == nil {
		return ierr.NewError("stripe customer already mapped").
			WithHint("Stripe customer already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return s.InMemoryStore.Create(ctx, c.UserID, copyCustomer(c))
}

func (s *InMemoryCustomerStore) GetByUserID(ctx context.Context, userID string) (*customer.Customer, error) {
	c, err := s.InMemoryStore.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return copyCustomer(c), nil
}

func (s *InMemoryCustomerStore) GetByStripeCustomerID(ctx context.Context, stripeCustomerID string) (*customer.Customer, error) {
	found := s.List(ctx, func(c *customer.Customer) bool {
		return c.StripeCustomerID == stripeCustomerID
	}, nil)
	if len(found) == 0 {
		return nil, ierr.NewError("customer not found").
			WithHint("Customer not found").
			Mark(ierr.ErrNotFound)
	}
	return copyCustomer(found[0]), nil
}
