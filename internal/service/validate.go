package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"mta/internal/domain"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Поля в ошибках называем так же, как в JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags and reports the first violation as a
// *domain.ValidationError.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("failed to validate: %w", err)
	}

	fe := verrs[0]
	return domain.NewValidationError(fieldPath(fe), reasonOf(fe))
}

// fieldPath drops the top-level struct name: "BookingRequest.lines[0].quantity" -> "lines[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func reasonOf(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " entries"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag()
	}
}
