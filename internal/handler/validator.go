package handler

import (
	"github.com/go-playground/validator/v10"
)

// RequestValidator adapts validator/v10 to echo.Validator so handlers
// can call c.Validate on bound DTOs.
type RequestValidator struct {
	v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	return rv.v.Struct(i)
}
