package testutil

import (
	"context"

	"github.com/beautyops/beautyops/internal/domain/subscription"
	ierr "github.com/beautyops/beautyops/internal/errors"
)

// InMemorySubscriptionStore implements subscription.Repository keyed by stripe subscription id
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
	// Err, when set, is returned by every write
	Err error
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}
	c := *sub
	return &c
}

func (s *InMemorySubscriptionStore) Upsert(ctx context.Context, sub *subscription.Subscription) error {
	if s.Err != nil {
		return s.Err
	}
	s.Put(ctx, sub.StripeSubscriptionID, copySubscription(sub))
	return nil
}

func (s *InMemorySubscriptionStore) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, stripeSubscriptionID)
	if err != nil {
		return nil, err
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if s.Err != nil {
		return s.Err
	}
	return s.Mutate(ctx, sub.StripeSubscriptionID, func(*subscription.Subscription) (*subscription.Subscription, error) {
		return copySubscription(sub), nil
	})
}

func (s *InMemorySubscriptionStore) GetActiveByUserID(ctx context.Context, userID string) (*subscription.Subscription, error) {
	subs := s.List(ctx,
		func(sub *subscription.Subscription) bool {
			return sub.UserID == userID && sub.IsActive()
		},
		func(i, j *subscription.Subscription) bool {
			return i.UpdatedAt.After(j.UpdatedAt)
		},
	)
	if len(subs) == 0 {
		return nil, ierr.NewError("no active subscription").
			WithHint("No active subscription").
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(subs[0]), nil
}
