package validator

import (
	"sync"

	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// NewValidator builds the shared validator and registers the domain tags
// `tier` and `feature`.
func NewValidator() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("tier", func(fl validator.FieldLevel) bool {
			return types.Tier(fl.Field().String()).Validate() == nil
		})
		_ = v.RegisterValidation("feature", func(fl validator.FieldLevel) bool {
			return types.FeatureType(fl.Field().String()).Validate() == nil
		})
		validate = v
	})
	return validate
}

func GetValidator() *validator.Validate {
	return NewValidator()
}

func ValidateRequest(req interface{}) error {
	if err := GetValidator().Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, fe := range validateErrs {
				details[fe.Field()] = fe.Error()
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}
