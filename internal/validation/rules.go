// Package validation provides the custom validation rules shared by the domain validators.
package validation

import (
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/casevault/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank rejects strings made only of whitespace. Empty strings pass; pair it with
// validation.Required when a value is mandatory.
var NotBlank = validation.By(func(value any) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_not_blank_type", "must be a string")
	}
	if s != "" && strings.TrimSpace(s) == "" {
		return validation.NewError("validation_not_blank", "must not be blank")
	}
	return nil
})

// SingleLine rejects line breaks and every other control character.
var SingleLine = validation.By(func(value any) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_single_line_type", "must be a string")
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return validation.NewError("validation_single_line", "must be a single line of printable text")
		}
	}
	return nil
})

// NoControlChars rejects control characters other than tab, newline and carriage return.
var NoControlChars = validation.By(func(value any) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_control_chars_type", "must be a string")
	}
	for _, r := range s {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			return validation.NewError("validation_control_chars", "must not contain control characters")
		}
	}
	return nil
})
