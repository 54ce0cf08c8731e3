// Package validator adapts go-playground/validator to echo.Validator.
package validator

import (
	"net/http"
	"reflect"
	"strings"
	"unicode/utf8"

	"authsvc/internal/errors"

	"github.com/go-playground/validator/v10"
)

// passwordTag validates a password against the configured length policy.
const passwordTag = "password"

// FieldError describes one rejected field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ValidationError is returned by Validate. It carries its own HTTP mapping so
// the error middleware can render it like any other application error.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+":"+f.Rule)
	}

	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) HTTPCode() int     { return http.StatusBadRequest }
func (e *ValidationError) ErrorCode() string { return "VALIDATION_FAILED" }
func (e *ValidationError) Message() string   { return "Input validation failed" }
func (e *ValidationError) Details() any      { return e.Fields }

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validate *validator.Validate
}

// New builds the validator. passwordMaxLength bounds fields tagged
// `validate:"password"`; a non-positive value disables the bound. Lengths
// count characters, the same unit as the built-in max tag.
func New(passwordMaxLength int) *CustomValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names instead of Go field names.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	_ = validate.RegisterValidation(passwordTag, func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		if password == "" {
			return false
		}

		return passwordMaxLength <= 0 || utf8.RuneCountInString(password) <= passwordMaxLength
	})

	return &CustomValidator{validate: validate}
}

// Validate runs the struct tags on i.
func (cv *CustomValidator) Validate(i any) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return errors.Wrap(err, "failed to validate request")
	}

	fields := make([]FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, FieldError{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}

	return &ValidationError{Fields: fields}
}
