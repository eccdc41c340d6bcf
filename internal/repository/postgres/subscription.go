package postgres

import (
	"context"

	"github.com/beautyops/beautyops/internal/domain/subscription"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/postgres"
	"github.com/beautyops/beautyops/internal/types"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

const subscriptionColumns = `
	id, user_id, stripe_subscription_id, stripe_customer_id, subscription_tier, status,
	billing_interval, current_period_start, current_period_end, trial_end,
	cancel_at_period_end, canceled_at, created_at, updated_at`

func (r *subscriptionRepository) Upsert(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, user_id, stripe_subscription_id, stripe_customer_id, subscription_tier, status,
			billing_interval, current_period_start, current_period_end, trial_end,
			cancel_at_period_end, canceled_at, created_at, updated_at
		) VALUES (
			:id, :user_id, :stripe_subscription_id, :stripe_customer_id, :subscription_tier, :status,
			:billing_interval, :current_period_start, :current_period_end, :trial_end,
			:cancel_at_period_end, :canceled_at, :created_at, :updated_at
		)
		ON CONFLICT (stripe_subscription_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			subscription_tier = EXCLUDED.subscription_tier,
			status = EXCLUDED.status,
			billing_interval = EXCLUDED.billing_interval,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			trial_end = EXCLUDED.trial_end,
			cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			canceled_at = EXCLUDED.canceled_at,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, sub); err != nil {
		return wrapWriteErr(err, "subscription")
	}
	return nil
}

func (r *subscriptionRepository) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE stripe_subscription_id = $1`

	var sub subscription.Subscription
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &sub, query, stripeSubscriptionID); err != nil {
		return nil, wrapQueryErr(err, "Subscription", "stripe_subscription_id", stripeSubscriptionID)
	}
	return &sub, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions SET
			subscription_tier = :subscription_tier,
			status = :status,
			billing_interval = :billing_interval,
			current_period_start = :current_period_start,
			current_period_end = :current_period_end,
			trial_end = :trial_end,
			cancel_at_period_end = :cancel_at_period_end,
			canceled_at = :canceled_at,
			updated_at = :updated_at
		WHERE stripe_subscription_id = :stripe_subscription_id
	`

	res, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, sub)
	if err != nil {
		return wrapWriteErr(err, "subscription")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]any{"stripe_subscription_id": sub.StripeSubscriptionID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) GetActiveByUserID(ctx context.Context, userID string) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1 AND status IN ($2, $3)
		ORDER BY updated_at DESC
		LIMIT 1`

	var sub subscription.Subscription
	err := r.db.GetQuerier(ctx).GetContext(ctx, &sub, query, userID,
		types.SubscriptionStatusActive, types.SubscriptionStatusTrialing)
	if err != nil {
		return nil, wrapQueryErr(err, "Active subscription", "user_id", userID)
	}
	return &sub, nil
}
