package usage

import (
	"context"
	"time"

	"github.com/beautyops/beautyops/internal/types"
)

type Repository interface {
	Create(ctx context.Context, r *Record) error
	// SumCredits totals credits used for feature at or after since
	SumCredits(ctx context.Context, userID string, feature types.FeatureType, since time.Time) (int, error)
}
