package http

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/coralpress/notifications/internal/domain"
)

// RequestValidator plugs go-playground/validator into echo's c.Validate.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates the validator used by the router.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate wraps validation failures in the domain error taxonomy so the
// handler's error mapping turns them into 400 responses.
func (v *RequestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
