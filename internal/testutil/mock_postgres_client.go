package testutil

import (
	"context"

	"github.com/beautyops/beautyops/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil)

// MockPostgresClient runs units of work without a transaction and counts them
type MockPostgresClient struct {
	Calls int
}

func NewMockPostgresClient() *MockPostgresClient {
	return &MockPostgresClient{}
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	c.Calls++
	return fn(ctx)
}
