package supabase

import (
	"context"

	"github.com/beautyops/beautyops/internal/domain/profile"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/nedpals/supabase-go"
)

type profileRepository struct {
	client *supabase.Client
	logger *logger.Logger
}

func NewProfileRepository(client *supabase.Client, logger *logger.Logger) profile.Repository {
	return &profileRepository{client: client, logger: logger}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	var rows []profile.Profile
	err := r.client.DB.From(tableProfiles).
		Select("*").
		Eq("user_id", userID).
		ExecuteWithContext(ctx, &rows)
	if err != nil {
		return nil, wrapErr(err, "read", "profile")
	}
	if len(rows) == 0 {
		return nil, notFound("Profile", "user_id", userID)
	}
	return &rows[0], nil
}

func (r *profileRepository) Upsert(ctx context.Context, p *profile.Profile) error {
	var rows []profile.Profile
	if err := r.client.DB.From(tableProfiles).Upsert(p).ExecuteWithContext(ctx, &rows); err != nil {
		return wrapErr(err, "write", "profile")
	}
	return nil
}
