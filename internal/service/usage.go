package service

import (
	"context"
	"fmt"
	"time"

	"github.com/beautyops/beautyops/internal/api/dto"
	"github.com/beautyops/beautyops/internal/domain/usage"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/types"
)

// AccessDecision is the result of a feature access check
type AccessDecision struct {
	Feature types.FeatureType
	Tier    types.Tier
	Result  types.AccessResult
	Reason  string
	Used    int
	Limit   int
}

// Permits applies the fail-open policy: an unknown result is allowed so an
// unreachable usage store never locks users out of paid features.
func (d AccessDecision) Permits() bool {
	return d.Result == types.AccessAllowed || d.Result == types.AccessUnknown
}

// UsageService meters feature usage against the monthly limits of each tier
type UsageService interface {
	RecordUsage(ctx context.Context, userID string, req dto.RecordUsageRequest) (*dto.RecordUsageResponse, error)
	GetStats(ctx context.Context, userID string) (*dto.UsageStatsResponse, error)
	CheckAccess(ctx context.Context, userID string, feature types.FeatureType) AccessDecision
}

type usageService struct {
	ServiceParams
	profiles ProfileService
	now      func() time.Time
}

func NewUsageService(params ServiceParams, profiles ProfileService) UsageService {
	return &usageService{
		ServiceParams: params,
		profiles:      profiles,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *usageService) RecordUsage(ctx context.Context, userID string, req dto.RecordUsageRequest) (*dto.RecordUsageResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	decision := s.CheckAccess(ctx, userID, req.FeatureType)
	if !decision.Permits() {
		return nil, ierr.NewError("feature access denied").
			WithHint(decision.Reason).
			WithReportableDetails(map[string]any{
				"feature": req.FeatureType,
				"tier":    decision.Tier,
				"used":    decision.Used,
				"limit":   decision.Limit,
			}).
			Mark(ierr.ErrPermissionDenied)
	}

	record := usage.New(userID, req.FeatureType, req.Credits, req.Metadata)
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := s.UsageRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.Logger.Debugw("usage recorded",
		"user_id", userID,
		"feature", record.FeatureType,
		"credits", record.CreditsUsed,
	)
	return &dto.RecordUsageResponse{
		ID:          record.ID,
		FeatureType: record.FeatureType,
		CreditsUsed: record.CreditsUsed,
	}, nil
}

func (s *usageService) GetStats(ctx context.Context, userID string) (*dto.UsageStatsResponse, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("user profile not found").
				WithHint("User not found").
				WithReportableDetails(map[string]any{"user_id": userID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}

	tier := p.EffectiveTier()
	since := types.StartOfMonth(s.now())

	posUsed, err := s.UsageRepo.SumCredits(ctx, userID, types.FeaturePOSAnalysis, since)
	if err != nil {
		return nil, err
	}
	briefingsUsed, err := s.UsageRepo.SumCredits(ctx, userID, types.FeatureBriefing, since)
	if err != nil {
		return nil, err
	}

	posLimit, _ := types.FeatureLimit(tier, types.FeaturePOSAnalysis)
	briefingsLimit, _ := types.FeatureLimit(tier, types.FeatureBriefing)

	return &dto.UsageStatsResponse{
		Tier:            tier,
		PosCreditsUsed:  posUsed,
		PosCreditsLimit: posLimit,
		BriefingsUsed:   briefingsUsed,
		BriefingsLimit:  briefingsLimit,
	}, nil
}

func (s *usageService) CheckAccess(ctx context.Context, userID string, feature types.FeatureType) AccessDecision {
	decision := AccessDecision{Feature: feature, Tier: types.TierLowest}

	p, err := s.profiles.GetProfile(ctx, userID)
	switch {
	case err == nil:
		decision.Tier = p.EffectiveTier()
	case ierr.IsNotFound(err):
		// users without a profile row are on the lowest tier
	default:
		s.Logger.Warnw("usage access check could not read profile, allowing",
			"user_id", userID,
			"feature", feature,
			"error", err,
		)
		decision.Result = types.AccessUnknown
		return decision
	}

	limit, ok := types.FeatureLimit(decision.Tier, feature)
	if !ok {
		decision.Result = types.AccessDenied
		decision.Reason = "Feature not available"
		if required, found := types.MinimumTierFor(feature); found {
			decision.Reason = fmt.Sprintf("Requires %s subscription or higher", required)
		}
		return decision
	}
	decision.Limit = limit
	if limit == types.UsageUnlimited {
		decision.Result = types.AccessAllowed
		return decision
	}

	used, err := s.UsageRepo.SumCredits(ctx, userID, feature, types.StartOfMonth(s.now()))
	if err != nil {
		s.Logger.Warnw("usage access check could not read usage, allowing",
			"user_id", userID,
			"feature", feature,
			"error", err,
		)
		decision.Result = types.AccessUnknown
		return decision
	}
	decision.Used = used

	if used >= limit {
		decision.Result = types.AccessDenied
		decision.Reason = fmt.Sprintf("Monthly %s limit of %d reached", feature, limit)
		return decision
	}

	decision.Result = types.AccessAllowed
	return decision
}
