package testutil

import (
	"context"
	"time"

	"github.com/beautyops/beautyops/internal/domain/usage"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/samber/lo"
)

// InMemoryUsageStore implements usage.Repository
type InMemoryUsageStore struct {
	*InMemoryStore[*usage.Record]
	// Err, when set, is returned by every call
	Err error
}

func NewInMemoryUsageStore() *InMemoryUsageStore {
	return &InMemoryUsageStore{
		InMemoryStore: NewInMemoryStore[*usage.Record](),
	}
}

func (s *InMemoryUsageStore) Create(ctx context.Context, r *usage.Record) error {
	if s.Err != nil {
		return s.Err
	}
	c := *r
	return s.InMemoryStore.Create(ctx, r.ID, &c)
}

func (s *InMemoryUsageStore) SumCredits(ctx context.Context, userID string, feature types.FeatureType, since time.Time) (int, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	records := s.List(ctx, func(r *usage.Record) bool {
		return r.UserID == userID && r.FeatureType == feature && !r.CreatedAt.Before(since)
	}, nil)
	return lo.SumBy(records, func(r *usage.Record) int { return r.CreditsUsed }), nil
}
