package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/beautyops/beautyops/internal/config"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/golang-jwt/jwt/v4"
)

const defaultAudience = "authenticated"

type supabaseAuth struct {
	secret   string
	audience string
}

// NewSupabaseAuth validates Supabase access tokens, which are HS256 JWTs
// signed with the project's JWT secret
func NewSupabaseAuth(cfg *config.Configuration) Provider {
	audience := cfg.Auth.Supabase.Audience
	if audience == "" {
		audience = defaultAudience
	}
	return &supabaseAuth{
		secret:   cfg.Auth.Supabase.JWTSecret,
		audience: audience,
	}
}

func (s *supabaseAuth) GetProvider() types.AuthProvider {
	return types.AuthProviderSupabase
}

func (s *supabaseAuth) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	if s.secret == "" {
		return nil, ierr.NewError("jwt secret not configured").
			WithHint("JWT secret not configured").
			Mark(ierr.ErrSystem)
	}

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ierr.WithError(err).
				WithHint("Token expired").
				Mark(ierr.ErrUnauthorized)
		}
		return nil, ierr.WithError(err).
			WithHint("Invalid token").
			Mark(ierr.ErrUnauthorized)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid token").
			Mark(ierr.ErrUnauthorized)
	}

	if !claims.VerifyAudience(s.audience, true) {
		return nil, ierr.NewError("token audience mismatch").
			WithHint("Invalid token").
			Mark(ierr.ErrUnauthorized)
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return nil, ierr.NewError("token missing user id").
			WithHint("Invalid token").
			Mark(ierr.ErrUnauthorized)
	}

	email, _ := claims["email"].(string)

	return &Claims{
		UserID: userID,
		Email:  email,
	}, nil
}
