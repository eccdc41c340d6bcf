package types

import (
	"fmt"

	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/samber/lo"
)

// Tier is the subscription level that gates feature access.
// Tiers are ordered: solo_ae < pro_ae < enterprise.
type Tier string

const (
	TierSoloAE     Tier = "solo_ae"
	TierProAE      Tier = "pro_ae"
	TierEnterprise Tier = "enterprise"

	// TierLowest is the tier assigned when a plan cannot be mapped
	TierLowest = TierSoloAE
)

var tierLevels = map[Tier]int{
	TierSoloAE:     1,
	TierProAE:      2,
	TierEnterprise: 3,
}

func (t Tier) String() string {
	return string(t)
}

// Level returns the rank of the tier, 0 for unknown tiers
func (t Tier) Level() int {
	return tierLevels[t]
}

// Includes reports whether t grants at least the access of required.
// An unknown required tier is never satisfied.
func (t Tier) Includes(required Tier) bool {
	if required.Level() == 0 {
		return false
	}
	return t.Level() >= required.Level()
}

func (t Tier) Validate() error {
	allowed := []Tier{TierSoloAE, TierProAE, TierEnterprise}
	if !lo.Contains(allowed, t) {
		return ierr.NewError(fmt.Sprintf("invalid tier %q", t)).
			WithHint("Invalid subscription tier").
			WithReportableDetails(map[string]any{
				"tier":          t,
				"allowed_tiers": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
