package validate

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"
)

var testSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type cardInput struct {
	Slug  string `form:"slug"  validate:"required,slug,max=64"`
	Name  string `form:"name"  validate:"required,max=200"`
	Email string `form:"email" validate:"omitempty,email"`
}

type listInput struct {
	Cursor string `query:"cursor"`
	Limit  int    `query:"limit"  validate:"omitempty,min=1,max=100"`
	Order  string `query:"order"  validate:"omitempty,oneof=name updated"`
}

type pathInput struct {
	Slug string `param:"slug" validate:"required"`
}

type jsonInput struct {
	Website string `json:"website" validate:"omitempty,url"`
}

func newCardValidator(t *testing.T) *AppValidator {
	t.Helper()
	v := New()
	if err := v.RegisterRule("slug", testSlug.MatchString, "must contain only lowercase letters, digits and single hyphens"); err != nil {
		t.Fatalf("RegisterRule failed: %v", err)
	}
	return v
}

func validationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	return ve
}

func TestValidate_ValidCard(t *testing.T) {
	v := newCardValidator(t)
	if err := v.Validate(cardInput{Slug: "john-doe", Name: "John Doe", Email: "john@example.com"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_RequiredUsesFormNames(t *testing.T) {
	v := newCardValidator(t)
	ve := validationError(t, v.Validate(cardInput{}))

	if ve.Message != "validation failed" {
		t.Fatalf("unexpected message: %s", ve.Message)
	}
	fields := map[string]FieldError{}
	for _, f := range ve.Fields {
		fields[f.Field] = f
	}
	assertField(t, fields, "slug", "slug is required")
	assertField(t, fields, "name", "name is required")
}

func TestValidate_SlugRule(t *testing.T) {
	v := newCardValidator(t)
	for _, slug := range []string{"John", "double--dash", "-lead", "with space"} {
		ve := validationError(t, v.Validate(cardInput{Slug: slug, Name: "X"}))
		if len(ve.Fields) != 1 {
			t.Fatalf("slug %q: expected 1 field error, got %d", slug, len(ve.Fields))
		}
		if ve.Fields[0].Message != "slug must contain only lowercase letters, digits and single hyphens" {
			t.Fatalf("slug %q: unexpected message: %s", slug, ve.Fields[0].Message)
		}
		if ve.Fields[0].Value != slug {
			t.Fatalf("expected value %q, got %q", slug, ve.Fields[0].Value)
		}
	}
}

func TestRegisterRule_NonStringFieldFails(t *testing.T) {
	v := newCardValidator(t)
	type numeric struct {
		N int `json:"n" validate:"slug"`
	}
	ve := validationError(t, v.Validate(numeric{N: 3}))
	if ve.Fields[0].Field != "n" {
		t.Fatalf("expected field n, got %q", ve.Fields[0].Field)
	}
}

func TestValidate_Email(t *testing.T) {
	v := newCardValidator(t)
	ve := validationError(t, v.Validate(cardInput{Slug: "a", Name: "A", Email: "not-an-email"}))
	if ve.Fields[0].Message != "email must be a valid email address" {
		t.Fatalf("unexpected message: %s", ve.Fields[0].Message)
	}
}

func TestValidate_Max(t *testing.T) {
	v := newCardValidator(t)
	ve := validationError(t, v.Validate(cardInput{Slug: strings.Repeat("a", 65), Name: "A"}))
	if ve.Fields[0].Message != "slug must be at most 64 characters" {
		t.Fatalf("unexpected message: %s", ve.Fields[0].Message)
	}
}

func TestValidate_LongValueTruncated(t *testing.T) {
	v := newCardValidator(t)
	name := strings.Repeat("é", 201)
	ve := validationError(t, v.Validate(cardInput{Slug: "a", Name: name}))
	if ve.Fields[0].Message != "name must be at most 200 characters" {
		t.Fatalf("unexpected message: %s", ve.Fields[0].Message)
	}
	want := strings.Repeat("é", maxEchoedValue) + "…"
	if ve.Fields[0].Value != want {
		t.Fatalf("expected value truncated to %d runes, got %d", maxEchoedValue, utf8.RuneCountInString(ve.Fields[0].Value))
	}
}

func TestRegisterRule_Message(t *testing.T) {
	v := New()
	if err := v.RegisterRule("even", func(s string) bool { return len(s)%2 == 0 }, "must have an even length"); err != nil {
		t.Fatal(err)
	}
	type in struct {
		Code string `form:"code" validate:"even"`
	}
	ve := validationError(t, v.Validate(in{Code: "abc"}))
	if ve.Fields[0].Message != "code must have an even length" {
		t.Fatalf("unexpected message: %s", ve.Fields[0].Message)
	}
}

func TestValidate_QueryTags(t *testing.T) {
	v := New()
	if err := v.Validate(listInput{Limit: 20, Order: "name"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	ve := validationError(t, v.Validate(listInput{Limit: -1}))
	if ve.Fields[0].Field != "limit" || ve.Fields[0].Message != "limit must be at least 1" {
		t.Fatalf("unexpected field error: %+v", ve.Fields[0])
	}

	ve = validationError(t, v.Validate(listInput{Order: "random"}))
	if ve.Fields[0].Message != "order must be one of: name updated" {
		t.Fatalf("unexpected message: %s", ve.Fields[0].Message)
	}
}

func TestValidate_ParamTags(t *testing.T) {
	v := New()
	ve := validationError(t, v.Validate(pathInput{}))
	if ve.Fields[0].Field != "slug" {
		t.Fatalf("expected param tag name 'slug', got %q", ve.Fields[0].Field)
	}
}

func TestValidate_URL(t *testing.T) {
	v := New()
	ve := validationError(t, v.Validate(jsonInput{Website: "not a url"}))
	if ve.Fields[0].Message != "website must be a valid URL" {
		t.Fatalf("unexpected message: %s", ve.Fields[0].Message)
	}
}

func TestValidate_NonStructInput(t *testing.T) {
	v := New()
	ve := validationError(t, v.Validate("just a string"))
	if len(ve.Fields) != 0 {
		t.Fatalf("expected no field errors, got %d", len(ve.Fields))
	}
}

func TestValidationError_ErrorMethod(t *testing.T) {
	ve := &ValidationError{Message: "validation failed"}
	if ve.Error() != "validation failed" {
		t.Fatalf("expected 'validation failed', got %q", ve.Error())
	}
}

func assertField(t *testing.T, fields map[string]FieldError, name, expectedMsg string) {
	t.Helper()
	fe, ok := fields[name]
	if !ok {
		t.Fatalf("missing field error for %q", name)
	}
	if fe.Message != expectedMsg {
		t.Fatalf("field %q: expected message %q, got %q", name, expectedMsg, fe.Message)
	}
}
