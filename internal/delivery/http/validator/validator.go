// Package validator adapts go-playground/validator to Echo's Validator interface.
package validator

import (
	domainerrors "chrono/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps a validator instance for Echo.
type CustomValidator struct {
	validate *validator.Validate
}

// New creates a CustomValidator.
func New() *CustomValidator {
	return &CustomValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate checks struct tags and maps failures onto the validation error of
// the application taxonomy so the error middleware renders them as 400s.
func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage(err.Error())
	}

	return nil
}
