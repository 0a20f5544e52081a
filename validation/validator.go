// Package validation wraps go-playground/validator with the rules used by
// decoded API objects and by configuration.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Operation statuses reported by the operations endpoint
const (
	StatusInProgress = "in-progress"
	StatusSuccess    = "success"
	StatusFailed     = "failed"
)

// pathSchemas are the prefixes accepted by disk_path
var pathSchemas = []string{"disk:", "trash:", "app:", "photounlim:"}

// Validator wraps go-playground/validator with custom validation logic.
type Validator struct {
	validate *validator.Validate
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Default returns a shared Validator. validator.Validate caches struct
// metadata and is safe for concurrent use.
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

// New creates a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON or koanf names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "koanf"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})

	// Registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("disk_path", validateDiskPath)
	_ = v.RegisterValidation("operation_status", validateOperationStatus)

	return &Validator{validate: v}
}

// GetValidator returns the underlying validator instance.
func (v *Validator) GetValidator() *validator.Validate {
	return v.validate
}

// Validate performs validation on the provided struct.
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// ValidationError holds structured field errors.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// NewValidationError creates a ValidationError from go-playground/validator errors.
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fieldErrors := make([]FieldError, 0, len(errs))

	for _, err := range errs {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   err.Namespace(),
			Message: getErrorMessage(err),
			Value:   fmt.Sprintf("%v", err.Value()),
		})
	}

	return &ValidationError{Errors: fieldErrors}
}

func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}

	if len(ve.Errors) == 1 {
		return fmt.Sprintf("validation failed: %s", ve.Errors[0].Message)
	}

	msgs := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		msgs = append(msgs, fe.Message)
	}
	return fmt.Sprintf("validation failed: %d errors: %s", len(ve.Errors), strings.Join(msgs, "; "))
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "disk_path":
		return fmt.Sprintf("%s must be a path with a known schema (%s)", fe.Field(), strings.Join(pathSchemas, ", "))
	case "operation_status":
		return fmt.Sprintf("%s must be one of %s, %s, %s", fe.Field(), StatusInProgress, StatusSuccess, StatusFailed)
	default:
		return fmt.Sprintf("%s failed validation", fe.Field())
	}
}

// HasPathSchema reports whether p starts with a known path schema followed by a slash, as in disk:/
func HasPathSchema(p string) bool {
	for _, schema := range pathSchemas {
		if strings.HasPrefix(p, schema+"/") {
			return true
		}
	}
	return false
}

// PathSchemas returns the known path schemas
func PathSchemas() []string {
	return append([]string(nil), pathSchemas...)
}

// Empty values pass; combine with required to reject them.
func validateDiskPath(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if p == "" {
		return true
	}
	return strings.HasPrefix(p, "/") || HasPathSchema(p)
}

func validateOperationStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case StatusInProgress, StatusSuccess, StatusFailed:
		return true
	}
	return false
}
