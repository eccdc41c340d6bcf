package postgres

import (
	"context"
	"time"

	"github.com/beautyops/beautyops/internal/domain/usage"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/postgres"
	"github.com/beautyops/beautyops/internal/types"
)

type usageRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewUsageRepository(db *postgres.DB, logger *logger.Logger) usage.Repository {
	return &usageRepository{db: db, logger: logger}
}

func (r *usageRepository) Create(ctx context.Context, rec *usage.Record) error {
	query := `
		INSERT INTO usage_tracking (id, user_id, feature_type, credits_used, metadata, created_at)
		VALUES (:id, :user_id, :feature_type, :credits_used, CAST(:metadata AS jsonb), :created_at)
	`

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, rec); err != nil {
		return wrapWriteErr(err, "usage")
	}
	return nil
}

func (r *usageRepository) SumCredits(ctx context.Context, userID string, feature types.FeatureType, since time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(credits_used), 0)
		FROM usage_tracking
		WHERE user_id = $1 AND feature_type = $2 AND created_at >= $3
	`

	var total int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &total, query, userID, feature, since); err != nil {
		return 0, wrapQueryErr(err, "Usage", "user_id", userID)
	}
	return total, nil
}
