package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Echo compatible validator that reports json (or param) names instead of Go field names
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}

func Create() CustomValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		paramName := strings.SplitN(field.Tag.Get("param"), ",", 2)[0]
		if paramName != "" {
			return paramName
		}

		jsonName := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if jsonName == "-" {
			return ""
		}
		if jsonName == "-," {
			return "-"
		}
		return jsonName
	})

	return CustomValidator{validator: validate}
}

// Flattens a validation failure into field -> failed condition.
// Returns nil when err did not come from the validator.
func FieldErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fieldError := range validationErrors {
		fields[fieldError.Field()] = fmt.Sprintf(
			"failed to validate while checking condition: %s",
			fieldError.Tag(),
		)
	}
	return fields
}
