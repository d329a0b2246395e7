// internal/app/system/inputval/inputval.go

// Package inputval validates request DTOs with struct tags. Handlers decode
// a body, call Validate, and get back a 400-mapped error listing every
// failed field, so validation never reaches domain code.
package inputval

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a DTO against its `validate` struct tags. Returns nil or
// an apperr with one message per failed field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Internal(err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperr.BadRequest(strings.Join(msgs, "; "))
}

// fieldMessage renders one human-readable message per failed rule.
func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "e164":
		return field + " must be a valid phone number"
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
