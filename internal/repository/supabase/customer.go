package supabase

import (
	"context"

	"github.com/beautyops/beautyops/internal/domain/customer"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/nedpals/supabase-go"
)

type customerRepository struct {
	client *supabase.Client
	logger *logger.Logger
}

func NewCustomerRepository(client *supabase.Client, logger *logger.Logger) customer.Repository {
	return &customerRepository{client: client, logger: logger}
}

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	var rows []customer.Customer
	if err := r.client.DB.From(tableCustomers).Insert(c).ExecuteWithContext(ctx, &rows); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("Customer mapping already exists").
				WithReportableDetails(map[string]any{"user_id": c.UserID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return wrapErr(err, "write", "customer")
	}
	return nil
}

func (r *customerRepository) GetByUserID(ctx context.Context, userID string) (*customer.Customer, error) {
	return r.getBy(ctx, "user_id", userID)
}

func (r *customerRepository) GetByStripeCustomerID(ctx context.Context, stripeCustomerID string) (*customer.Customer, error) {
	return r.getBy(ctx, "stripe_customer_id", stripeCustomerID)
}

func (r *customerRepository) getBy(ctx context.Context, column, value string) (*customer.Customer, error) {
	var rows []customer.Customer
	err := r.client.DB.From(tableCustomers).
		Select("*").
		Eq(column, value).
		ExecuteWithContext(ctx, &rows)
	if err != nil {
		return nil, wrapErr(err, "read", "customer")
	}
	if len(rows) == 0 {
		return nil, notFound("Customer", column, value)
	}
	return &rows[0], nil
}
