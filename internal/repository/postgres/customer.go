package postgres

import (
	"context"

	"github.com/beautyops/beautyops/internal/domain/customer"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/postgres"
	"github.com/lib/pq"
)

type customerRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCustomerRepository(db *postgres.DB, logger *logger.Logger) customer.Repository {
	return &customerRepository{db: db, logger: logger}
}

const uniqueViolation = "23505"

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO stripe_customers (id, user_id, stripe_customer_id, email, created_at)
		VALUES (:id, :user_id, :stripe_customer_id, :email, :created_at)
	`

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, c); err != nil {
		var pqErr *pq.Error
		if ierr.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ierr.WithError(err).
				WithHint("Customer mapping already exists").
				WithReportableDetails(map[string]any{"user_id": c.UserID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return wrapWriteErr(err, "customer")
	}
	return nil
}

func (r *customerRepository) GetByUserID(ctx context.Context, userID string) (*customer.Customer, error) {
	return r.getBy(ctx, "user_id", userID)
}

func (r *customerRepository) GetByStripeCustomerID(ctx context.Context, stripeCustomerID string) (*customer.Customer, error) {
	return r.getBy(ctx, "stripe_customer_id", stripeCustomerID)
}

// getBy is only called with the fixed column names above
func (r *customerRepository) getBy(ctx context.Context, column string, value string) (*customer.Customer, error) {
	query := `SELECT id, user_id, stripe_customer_id, email, created_at FROM stripe_customers WHERE ` + column + ` = $1`

	var c customer.Customer
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &c, query, value); err != nil {
		return nil, wrapQueryErr(err, "Customer", column, value)
	}
	return &c, nil
}
