package testutil

import (
	"context"

	"github.com/beautyops/beautyops/internal/types"
)

const (
	DefaultUserID    = "8f3c1b7e-5d2a-4e61-9a0b-2c4d6e8f0a1b"
	DefaultUserEmail = "ae@clinic.test"
)

// SetupContext returns a request context authenticated as DefaultUserID
func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.SetUserID(ctx, DefaultUserID)
	ctx = types.SetUserEmail(ctx, DefaultUserEmail)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	return ctx
}
