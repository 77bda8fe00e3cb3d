package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type requestValidator struct {
	validate *validator.Validate
}

// NewValidator plugs go-playground/validator into echo's c.Validate.
func NewValidator() echo.Validator {
	return &requestValidator{validate: validator.New()}
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
