package service

import (
	"context"

	"github.com/beautyops/beautyops/internal/cache"
	"github.com/beautyops/beautyops/internal/domain/profile"
	"github.com/beautyops/beautyops/internal/domain/subscription"
	ierr "github.com/beautyops/beautyops/internal/errors"
)

// ProfileService serves the read side of the subscription projection.
// Reads are cached per user and invalidated by the projector.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*profile.Profile, error)
	// GetActiveSubscription returns nil without error when the user has none
	GetActiveSubscription(ctx context.Context, userID string) (*subscription.Subscription, error)
	Invalidate(ctx context.Context, userID string)
}

type profileService struct {
	ServiceParams
}

func NewProfileService(params ServiceParams) ProfileService {
	return &profileService{ServiceParams: params}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	if userID == "" {
		return nil, ierr.NewError("user id is required").
			WithHint("User id is required").
			Mark(ierr.ErrValidation)
	}

	key := cache.GenerateKey(cache.PrefixProfile, userID)
	if p, ok := cache.Fetch[*profile.Profile](ctx, s.Cache, key); ok && p != nil {
		return p, nil
	}

	p, err := s.ProfileRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.Cache.Set(ctx, key, p, 0)
	return p, nil
}

func (s *profileService) GetActiveSubscription(ctx context.Context, userID string) (*subscription.Subscription, error) {
	if userID == "" {
		return nil, ierr.NewError("user id is required").
			WithHint("User id is required").
			Mark(ierr.ErrValidation)
	}

	key := cache.GenerateKey(cache.PrefixSubscription, userID)
	if sub, ok := cache.Fetch[*subscription.Subscription](ctx, s.Cache, key); ok && sub != nil {
		return sub, nil
	}

	sub, err := s.SubRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	s.Cache.Set(ctx, key, sub, 0)
	return sub, nil
}

func (s *profileService) Invalidate(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixProfile, userID))
	s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixSubscription, userID))
}
