package filter

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gdugdh24/roomly-backend/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks f before it may replace the active filters.
func Validate(f *domain.DiscoveryFilters) error {
	return ValidateStruct(f, "filters")
}

// ValidateStruct runs the struct tags of v and collects every failure into
// one domain.ValidationError.
func ValidateStruct(v interface{}, root string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &domain.ValidationError{Fields: []domain.FieldError{{Field: root, Message: err.Error()}}}
	}

	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domain.FieldError{
			Field:   fieldPath(fe),
			Message: formatFieldError(fe),
		})
	}
	return &domain.ValidationError{Fields: fields}
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gtefield":
		return "max must be greater than or equal to min"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "required":
		return "must not be empty"
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
