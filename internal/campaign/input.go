package campaign

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Input is the campaign brief as submitted from the studio form. It is
// validated before any provider call is made.
type Input struct {
	BrandName      string `json:"brandName" validate:"required,min=2"`
	Tone           string `json:"tone" validate:"required"`
	TargetAudience string `json:"targetAudience" validate:"required"`
	Products       string `json:"products" validate:"required,min=10"`
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (in Input) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return &ValidationError{Field: first.Field(), Reason: reasonFor(first)}
	}
	return err
}

func reasonFor(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", err.Param())
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}
