package auth

import (
	"context"

	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/types"
)

// Claims are the identity facts extracted from a validated access token
type Claims struct {
	UserID string
	Email  string
}

type Provider interface {
	GetProvider() types.AuthProvider
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

func NewProvider(cfg *config.Configuration) Provider {
	switch cfg.Auth.Provider {
	case types.AuthProviderSupabase:
		return NewSupabaseAuth(cfg)
	default:
		return NewSupabaseAuth(cfg)
	}
}
