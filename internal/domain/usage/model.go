package usage

import (
	"time"

	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/types"
)

// Record is one metered use of a feature
type Record struct {
	ID          string            `db:"id" json:"id"`
	UserID      string            `db:"user_id" json:"user_id"`
	FeatureType types.FeatureType `db:"feature_type" json:"feature_type"`
	CreditsUsed int               `db:"credits_used" json:"credits_used"`
	Metadata    types.Metadata    `db:"metadata" json:"metadata"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}

func New(userID string, feature types.FeatureType, credits int, metadata types.Metadata) *Record {
	if credits <= 0 {
		credits = 1
	}
	if metadata == nil {
		metadata = types.Metadata{}
	}
	return &Record{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USAGE),
		UserID:      userID,
		FeatureType: feature,
		CreditsUsed: credits,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}
}

func (r *Record) Validate() error {
	if r.UserID == "" {
		return ierr.NewError("user id is required").
			WithHint("Usage must belong to a user").
			Mark(ierr.ErrValidation)
	}
	return r.FeatureType.Validate()
}
