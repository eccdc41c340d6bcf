package profile

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	// Upsert writes the full row keyed by UserID
	Upsert(ctx context.Context, p *Profile) error
}
