package supabase

import (
	"context"
	"time"

	"github.com/beautyops/beautyops/internal/domain/usage"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/nedpals/supabase-go"
	"github.com/samber/lo"
)

type usageRepository struct {
	client *supabase.Client
	logger *logger.Logger
}

func NewUsageRepository(client *supabase.Client, logger *logger.Logger) usage.Repository {
	return &usageRepository{client: client, logger: logger}
}

func (r *usageRepository) Create(ctx context.Context, rec *usage.Record) error {
	var rows []usage.Record
	if err := r.client.DB.From(tableUsage).Insert(rec).ExecuteWithContext(ctx, &rows); err != nil {
		return wrapErr(err, "record", "usage")
	}
	return nil
}

// SumCredits filters by month in process; a user's monthly rows are few
func (r *usageRepository) SumCredits(ctx context.Context, userID string, feature types.FeatureType, since time.Time) (int, error) {
	var rows []usage.Record
	err := r.client.DB.From(tableUsage).
		Select("credits_used", "created_at").
		Eq("user_id", userID).
		Eq("feature_type", string(feature)).
		ExecuteWithContext(ctx, &rows)
	if err != nil {
		return 0, wrapErr(err, "read", "usage")
	}

	return lo.SumBy(rows, func(rec usage.Record) int {
		if rec.CreatedAt.Before(since) {
			return 0
		}
		return rec.CreditsUsed
	}), nil
}
