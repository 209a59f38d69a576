package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// FieldError is a single violated field with a human-readable message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every invalid field of a request, not just the first.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message for field. Only the first message per field is kept.
func (e *ValidationError) Add(field, message string) {
	if e.Has(field) {
		return
	}
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Has reports whether field already carries an error.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Map returns the errors keyed by field name, the shape sent to clients.
func (e *ValidationError) Map() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}

// OrNil returns nil when no field failed, so callers can return it as an error directly.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// NewValidator builds a validator that reports JSON field names and knows the notblank rule.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
	return v
}

// CollectValidationErrors folds the result of validator.Struct into dst.
// Errors that are not validator.ValidationErrors are returned unchanged.
func CollectValidationErrors(err error, dst *ValidationError) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		dst.Add(fe.Field(), FieldMessage(fe.Field(), fe.Tag(), fe.Param()))
	}
	return nil
}

// FieldMessage renders the message shown for a failed rule.
func FieldMessage(field, tag, param string) string {
	switch tag {
	case "required", "notblank":
		return fmt.Sprintf("%s não pode estar vazio.", field)
	case "oneof":
		return fmt.Sprintf("%s deve ser um dos valores: %s.", field, strings.ReplaceAll(param, " ", ", "))
	case "email":
		return "Por favor, insira um e-mail válido."
	case "min":
		return fmt.Sprintf("%s deve ter no mínimo %s caracteres.", field, param)
	case "max":
		return fmt.Sprintf("%s deve ter no máximo %s caracteres.", field, param)
	case "gte":
		return fmt.Sprintf("%s deve ser maior ou igual a %s.", field, param)
	default:
		return fmt.Sprintf("%s é inválido (%s).", field, tag)
	}
}
