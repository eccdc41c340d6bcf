package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/beautyops/beautyops/internal/integration/stripe"
)

var _ stripe.Gateway = (*MockStripeGateway)(nil)

// MockStripeGateway records calls instead of talking to Stripe
type MockStripeGateway struct {
	mu             sync.Mutex
	customers      int
	Checkouts      []stripe.CheckoutParams
	PortalSessions []string
	// Err, when set, fails every call
	Err error
}

func NewMockStripeGateway() *MockStripeGateway {
	return &MockStripeGateway{}
}

func (m *MockStripeGateway) CreateCustomer(ctx context.Context, userID, email string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers++
	return fmt.Sprintf("cus_test_%d", m.customers), nil
}

func (m *MockStripeGateway) CreateCheckoutSession(ctx context.Context, params stripe.CheckoutParams) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Checkouts = append(m.Checkouts, params)
	return fmt.Sprintf("https://checkout.stripe.test/c/%d", len(m.Checkouts)), nil
}

func (m *MockStripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PortalSessions = append(m.PortalSessions, customerID)
	return "https://billing.stripe.test/p/" + customerID, nil
}

// CustomersCreated returns how many Stripe customers were created
func (m *MockStripeGateway) CustomersCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.customers
}
