// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

// Package validation provides struct validation using go-playground/validator v10.
// It provides a thread-safe singleton validator instance with custom validators
// for dataset catalog entries and query parameters.
//
// Features:
//   - Singleton validator instance (thread-safe, caches struct info)
//   - Custom validators for field keys and table references
//   - Field names reported by their json or koanf tag (date_column, not DateColumn)
//   - Human-readable messages for the common tags
//
// Example usage:
//
//	type FieldConfig struct {
//	    Name string `koanf:"name" validate:"required,fieldkey"`
//	    Expr string `koanf:"expr" validate:"required"`
//	}
//
//	if verr := validation.ValidateStruct(&field); verr != nil {
//	    return fmt.Errorf("dimension: %w", verr)
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var (
	fieldKeyPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

	// tableRefPattern accepts table, schema.table and catalog.schema.table.
	tableRefPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*){0,2}$`)
)

// ValidationError represents a single field validation error with structured information.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the field name that failed validation.
func (e *ValidationError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string {
	return e.tag
}

// Param returns the parameter for the validation tag (e.g., "100" for "max=100").
func (e *ValidationError) Param() string {
	return e.param
}

// Value returns the actual value that failed validation.
func (e *ValidationError) Value() interface{} {
	return e.value
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	return e.message
}

// RequestValidationError represents a collection of validation errors.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the slice of validation errors.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

// Error implements the error interface, returning a combined error message.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}

	messages := make([]string, 0, len(ve.errors))
	for _, err := range ve.errors {
		messages = append(messages, err.Error())
	}

	return strings.Join(messages, "; ")
}

// GetValidator returns the singleton validator instance.
// This function is thread-safe.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report wire or config names in errors
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, key := range []string{"json", "koanf"} {
				name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})

		// Registration only fails for empty tags or nil funcs.
		_ = validate.RegisterValidation("fieldkey", validateFieldKey)
		_ = validate.RegisterValidation("tableref", validateTableRef)
	})

	return validate
}

// validateFieldKey accepts dataset, dimension and measure keys.
func validateFieldKey(fl validator.FieldLevel) bool {
	return fieldKeyPattern.MatchString(fl.Field().String())
}

// validateTableRef accepts unquoted, optionally qualified table names.
func validateTableRef(fl validator.FieldLevel) bool {
	return tableRefPattern.MatchString(fl.Field().String())
}

// IsFieldKey reports whether s is a well-formed dataset, dimension or measure key.
func IsFieldKey(s string) bool {
	return fieldKeyPattern.MatchString(s)
}

// IsTableRef reports whether s is a table, schema.table or
// catalog.schema.table reference that is safe to render unquoted.
func IsTableRef(s string) bool {
	return tableRefPattern.MatchString(s)
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil if validation passes, or *RequestValidationError if validation fails.
func ValidateStruct(s interface{}) *RequestValidationError {
	return convert(GetValidator().Struct(s))
}

// ValidateVar validates a single value against tag, reporting failures under
// the given field name.
//
//	if err := validation.ValidateVar(limit, "limit", "min=1,max=5000"); err != nil { ... }
func ValidateVar(value interface{}, field, tag string) *RequestValidationError {
	verr := convert(GetValidator().Var(value, tag))
	if verr == nil {
		return nil
	}
	for i := range verr.errors {
		verr.errors[i].field = field
		verr.errors[i].message = strings.Replace(verr.errors[i].message, "{field}", field, 1)
	}
	return verr
}

func convert(err error) *RequestValidationError {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []ValidationError{
				{
					field:   "unknown",
					tag:     "unknown",
					message: err.Error(),
				},
			},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			value:   fieldErr.Value(),
			message: translateError(fieldErr),
		}
	}

	return &RequestValidationError{errors: fieldErrors}
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"fieldkey": "%s must contain only lowercase letters, digits and underscores",
	"tableref": "%s must be a table name, optionally qualified as schema.table",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

// translateError converts a validator.FieldError to a human-readable message.
// Var validations carry no field name; "{field}" is substituted by ValidateVar.
func translateError(fe validator.FieldError) string {
	field := fe.Field()
	if field == "" {
		field = "{field}"
	}
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}

	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	return translateMinMax(fe, field, tag, param)
}

// translateMinMax handles min/max validation with type-specific messages.
func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	isString := fe.Kind() == reflect.String
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		if isList {
			return fmt.Sprintf("%s must contain at least %s entries", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
