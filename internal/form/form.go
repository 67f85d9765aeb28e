// Package form checks drafts before they are sent to the backend.
package form

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"itdash/internal/dash"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()

	// Report fields by their wire names so messages match what the backend calls them.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// notblank rejects strings that are empty after trimming.
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(fmt.Sprintf("form: registering notblank: %v", err))
	}

	return v
}

// Validate checks every required field of record. It returns a
// *dash.ValidationError listing the failing fields, or nil.
func Validate(record any) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validating %T: %w", record, err)
	}

	fields := make([]dash.FieldError, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, dash.FieldError{Field: fe.Field(), Message: fieldError(fe)})
	}
	return &dash.ValidationError{Fields: fields}
}

// Valid reports whether record passes Validate.
func Valid(record any) bool {
	return Validate(record) == nil
}

// HasChanges reports whether edited differs from original in any field.
func HasChanges[T comparable](original, edited T) bool {
	return original != edited
}

// StructValidator validates records of type T using their struct tags.
type StructValidator[T any] struct{}

func (StructValidator[T]) Validate(record T) error {
	return Validate(record)
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
