package postgres

import (
	"context"

	"github.com/beautyops/beautyops/internal/domain/profile"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/postgres"
)

type profileRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewProfileRepository(db *postgres.DB, logger *logger.Logger) profile.Repository {
	return &profileRepository{db: db, logger: logger}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	query := `
		SELECT
			user_id,
			COALESCE(email, '') AS email,
			COALESCE(full_name, '') AS full_name,
			COALESCE(company, '') AS company,
			COALESCE(subscription_tier, '') AS subscription_tier,
			subscription_status,
			subscription_started_at,
			trial_ends_at,
			created_at,
			updated_at
		FROM user_profiles
		WHERE user_id = $1
	`

	var p profile.Profile
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, userID); err != nil {
		return nil, wrapQueryErr(err, "Profile", "user_id", userID)
	}
	return &p, nil
}

func (r *profileRepository) Upsert(ctx context.Context, p *profile.Profile) error {
	query := `
		INSERT INTO user_profiles (
			user_id, email, full_name, company, subscription_tier, subscription_status,
			subscription_started_at, trial_ends_at, created_at, updated_at
		) VALUES (
			:user_id, NULLIF(:email, ''), NULLIF(:full_name, ''), NULLIF(:company, ''),
			NULLIF(:subscription_tier, ''), :subscription_status,
			:subscription_started_at, :trial_ends_at, :created_at, :updated_at
		)
		ON CONFLICT (user_id) DO UPDATE SET
			email = COALESCE(EXCLUDED.email, user_profiles.email),
			full_name = COALESCE(EXCLUDED.full_name, user_profiles.full_name),
			company = COALESCE(EXCLUDED.company, user_profiles.company),
			subscription_tier = EXCLUDED.subscription_tier,
			subscription_status = EXCLUDED.subscription_status,
			subscription_started_at = EXCLUDED.subscription_started_at,
			trial_ends_at = EXCLUDED.trial_ends_at,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, p); err != nil {
		return wrapWriteErr(err, "profile")
	}
	return nil
}
