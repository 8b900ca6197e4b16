// Package validate adapts go-playground/validator to Echo and reports
// failures with the field names clients actually sent.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// maxEchoedValue caps how much of a rejected value is sent back.
const maxEchoedValue = 100

// FieldError is one rejected field.
type FieldError struct {
	Field   string
	Message string
	Value   string
}

// ValidationError is returned when input validation fails.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AppValidator implements echo.Validator.
type AppValidator struct {
	v        *validator.Validate
	messages map[string]string
}

// New creates a validator naming fields after their json, form, query or
// param tag, in that order.
func New() *AppValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form", "query", "param"} {
			if name, _, _ := strings.Cut(fld.Tag.Get(tag), ","); name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return &AppValidator{v: v, messages: make(map[string]string)}
}

// RegisterRule adds a string rule under tag. Failures read
// "<field> <message>". Non-string fields always fail the rule.
func (av *AppValidator) RegisterRule(tag string, fn func(string) bool, message string) error {
	err := av.v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.String && fn(fl.Field().String())
	})
	if err != nil {
		return err
	}
	av.messages[tag] = message
	return nil
}

// Validate checks i and returns a *ValidationError on failure.
func (av *AppValidator) Validate(i any) error {
	err := av.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &ValidationError{Message: err.Error()}
	}
	fields := make([]FieldError, len(ve))
	for idx, fe := range ve {
		fields[idx] = FieldError{
			Field:   fe.Field(),
			Message: fe.Field() + " " + av.message(fe),
			Value:   echoedValue(fe.Value()),
		}
	}
	return &ValidationError{Message: "validation failed", Fields: fields}
}

func (av *AppValidator) message(fe validator.FieldError) string {
	if msg, ok := av.messages[fe.Tag()]; ok {
		return msg
	}
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + unit
	case "max":
		return "must be at most " + fe.Param() + unit
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url", "http_url":
		return "must be a valid URL"
	}
	return "failed on " + fe.Tag() + " validation"
}

func echoedValue(v any) string {
	s := fmt.Sprintf("%v", v)
	if utf8.RuneCountInString(s) <= maxEchoedValue {
		return s
	}
	return string([]rune(s)[:maxEchoedValue]) + "…"
}
