package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"shopapp/internal/domain"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// report json names so messages match the request body
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateRequest validates the request body against a struct with validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// DecodeAndValidate decodes JSON request body and validates it. Tag
// violations come back as domain.ValidationErrors.
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	if err := ValidateRequest(v); err != nil {
		if fields := FormatValidationErrors(err); len(fields) > 0 {
			return domain.ValidationErrors(fields)
		}
		return err
	}
	return nil
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(err error) []domain.FieldError {
	var fields []domain.FieldError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			fields = append(fields, domain.FieldError{
				Field:   fieldPath(e),
				Message: getErrorMessage(e),
			})
		}
	}

	return fields
}

// fieldPath drops the top level struct name from the namespace
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Kind() == reflect.Slice {
			return "At least " + e.Param() + " element(s) must be provided"
		}
		if e.Kind() == reflect.String {
			return "Value is too short"
		}
		return "Value must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Value is too long"
		}
		return "Value must be at most " + e.Param()
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	case "lt":
		return "Value must be less than " + e.Param()
	default:
		return "Invalid value"
	}
}
