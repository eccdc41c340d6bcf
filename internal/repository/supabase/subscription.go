package supabase

import (
	"context"
	"sort"

	"github.com/beautyops/beautyops/internal/domain/subscription"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/nedpals/supabase-go"
	"github.com/samber/lo"
)

type subscriptionRepository struct {
	client *supabase.Client
	logger *logger.Logger
}

func NewSubscriptionRepository(client *supabase.Client, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{client: client, logger: logger}
}

// Upsert merges on the primary key, so an existing row's id is reused for
// the same stripe_subscription_id
func (r *subscriptionRepository) Upsert(ctx context.Context, sub *subscription.Subscription) error {
	existing, err := r.GetByStripeID(ctx, sub.StripeSubscriptionID)
	if err != nil && !ierr.IsNotFound(err) {
		return err
	}
	if existing != nil {
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
	}

	var rows []subscription.Subscription
	if err := r.client.DB.From(tableSubscriptions).Upsert(sub).ExecuteWithContext(ctx, &rows); err != nil {
		return wrapErr(err, "write", "subscription")
	}
	return nil
}

func (r *subscriptionRepository) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*subscription.Subscription, error) {
	var rows []subscription.Subscription
	err := r.client.DB.From(tableSubscriptions).
		Select("*").
		Eq("stripe_subscription_id", stripeSubscriptionID).
		ExecuteWithContext(ctx, &rows)
	if err != nil {
		return nil, wrapErr(err, "read", "subscription")
	}
	if len(rows) == 0 {
		return nil, notFound("Subscription", "stripe_subscription_id", stripeSubscriptionID)
	}
	return &rows[0], nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	var rows []subscription.Subscription
	err := r.client.DB.From(tableSubscriptions).
		Update(sub).
		Eq("stripe_subscription_id", sub.StripeSubscriptionID).
		ExecuteWithContext(ctx, &rows)
	if err != nil {
		return wrapErr(err, "update", "subscription")
	}
	if len(rows) == 0 {
		return notFound("Subscription", "stripe_subscription_id", sub.StripeSubscriptionID)
	}
	return nil
}

func (r *subscriptionRepository) GetActiveByUserID(ctx context.Context, userID string) (*subscription.Subscription, error) {
	var rows []subscription.Subscription
	err := r.client.DB.From(tableSubscriptions).
		Select("*").
		Eq("user_id", userID).
		ExecuteWithContext(ctx, &rows)
	if err != nil {
		return nil, wrapErr(err, "read", "subscription")
	}

	active := lo.Filter(rows, func(s subscription.Subscription, _ int) bool {
		return s.Status.IsActive()
	})
	if len(active) == 0 {
		return nil, notFound("Active subscription", "user_id", userID)
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].UpdatedAt.After(active[j].UpdatedAt)
	})
	return &active[0], nil
}
