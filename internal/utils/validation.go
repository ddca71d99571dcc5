package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Layouts accepted for ISO 8601 date-times. Zone-less forms come from
// datetime-local inputs and are read as UTC.
var isoDateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// NewValidator returns a validator that reports fields by their JSON names.
// It also knows the iso8601 tag backed by ParseISODateTime.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		_, err := ParseISODateTime(fl.Field().String())
		return err == nil
	})
	return v
}

// ParseISODateTime parses an RFC 3339 timestamp or a zone-less ISO 8601 date-time.
func ParseISODateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range isoDateTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO 8601 date-time %q", value)
}

// ValidationMessage turns the first validation failure into a client message.
// ok is false when err is not a validation error.
func ValidationMessage(err error) (message string, ok bool) {
	fe, ok := firstFieldError(err)
	if !ok {
		return "", false
	}

	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field), true
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field), true
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param()), true
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param()), true
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")), true
	case "iso8601":
		return fmt.Sprintf("%s must be an ISO 8601 date-time", field), true
	default:
		return fmt.Sprintf("%s is invalid", field), true
	}
}

// FieldDetails is the machine readable part of a validation failure.
type FieldDetails struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationDetails names the field and rule behind the first validation failure.
func ValidationDetails(err error) (FieldDetails, bool) {
	fe, ok := firstFieldError(err)
	if !ok {
		return FieldDetails{}, false
	}
	return FieldDetails{Field: fe.Field(), Rule: fe.Tag()}, true
}

func firstFieldError(err error) (validator.FieldError, bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return nil, false
	}
	return validationErrors[0], true
}
