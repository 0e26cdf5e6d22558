// Package validation wraps go-playground/validator with readable field errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports fields by their config key
func New() *Validator {
	v := validator.New()

	// Use mapstructure tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// FieldError describes one failed constraint
type FieldError struct {
	Field   string
	Message string
}

// Error collects every failed constraint of a validation call
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Struct validates a struct using its `validate` tags
func (v *Validator) Struct(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err, "")
	}
	return nil
}

// Var validates a single value against a tag expression, reporting it as field
func (v *Validator) Var(field string, value any, tag string) error {
	if err := v.v.Var(value, tag); err != nil {
		return v.formatError(err, field)
	}
	return nil
}

// formatError converts validator errors to *Error
func (v *Validator) formatError(err error, field string) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make([]FieldError, 0, len(validationErrs))
	for _, e := range validationErrs {
		name := e.Namespace()
		if field != "" {
			name = field
		} else if i := strings.Index(name, "."); i >= 0 {
			// Drop the root struct name
			name = name[i+1:]
		}
		fields = append(fields, FieldError{Field: name, Message: friendlyMessage(e)})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })

	return &Error{Fields: fields}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url", "http_url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s", e.Param())
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "excludesall":
		return "must not contain any of " + fmt.Sprintf("%q", e.Param())
	default:
		return "is invalid"
	}
}
