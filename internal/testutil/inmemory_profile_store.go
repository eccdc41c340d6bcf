package testutil

import (
	"context"

	"github.com/beautyops/beautyops/internal/domain/profile"
)

// InMemoryProfileStore implements profile.Repository
type InMemoryProfileStore struct {
	*InMemoryStore[*profile.Profile]
	// Err, when set, is returned by every call
	Err error
}

func NewInMemoryProfileStore() *InMemoryProfileStore {
	return &InMemoryProfileStore{
		InMemoryStore: NewInMemoryStore[*profile.Profile](),
	}
}

func copyProfile(p *profile.Profile) *profile.Profile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (s *InMemoryProfileStore) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	p, err := s.InMemoryStore.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return copyProfile(p), nil
}

func (s *InMemoryProfileStore) Upsert(ctx context.Context, p *profile.Profile) error {
	if s.Err != nil {
		return s.Err
	}
	s.Put(ctx, p.UserID, copyProfile(p))
	return nil
}
