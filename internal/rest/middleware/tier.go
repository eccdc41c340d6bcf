package middleware

import (
	"fmt"

	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/service"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/gin-gonic/gin"
)

// Gin context keys set by the gating middlewares
const (
	ContextKeySubscription   = "subscription"
	ContextKeyAccessDecision = "access_decision"
)

// RequireTier lets a request through only when the authenticated user has an
// active subscription at or above required. Must run after AuthenticateMiddleware.
func RequireTier(profiles service.ProfileService, required types.Tier) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := types.GetUserID(ctx)
		if userID == "" {
			_ = c.Error(ierr.NewError("no authenticated user").
				WithHint("Unauthorized").
				Mark(ierr.ErrUnauthorized))
			c.Abort()
			return
		}

		sub, err := profiles.GetActiveSubscription(ctx, userID)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if sub == nil {
			_ = c.Error(ierr.NewError("no active subscription").
				WithHint("No active subscription").
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}

		if !sub.Tier.Includes(required) {
			_ = c.Error(ierr.NewErrorf("tier %s below required %s", sub.Tier, required).
				WithHint(fmt.Sprintf("Requires %s subscription or higher", required)).
				WithReportableDetails(map[string]any{
					"tier":          sub.Tier,
					"required_tier": required,
				}).
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}

		c.Set(ContextKeySubscription, sub)
		c.Next()
	}
}

// RequireFeature applies the usage access policy to a route. Unknown results
// pass, so an unreachable usage store does not block the feature.
func RequireFeature(usage service.UsageService, feature types.FeatureType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := types.GetUserID(ctx)
		if userID == "" {
			_ = c.Error(ierr.NewError("no authenticated user").
				WithHint("Unauthorized").
				Mark(ierr.ErrUnauthorized))
			c.Abort()
			return
		}

		decision := usage.CheckAccess(ctx, userID, feature)
		if !decision.Permits() {
			_ = c.Error(ierr.NewError("feature access denied").
				WithHint(decision.Reason).
				WithReportableDetails(map[string]any{
					"feature": feature,
					"tier":    decision.Tier,
					"used":    decision.Used,
					"limit":   decision.Limit,
				}).
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}

		c.Set(ContextKeyAccessDecision, decision)
		c.Next()
	}
}
