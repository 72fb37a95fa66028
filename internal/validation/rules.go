// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/guardvault/guardvault/internal/errors"
)

// kindRegex constrains content kind labels to a slug-like alphabet.
var kindRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoWhitespace validates that a string doesn't contain leading/trailing whitespace.
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// KindLabel validates content kind labels: lowercase alphanumeric with
// hyphens and underscores, starting with an alphanumeric.
var KindLabel = validation.NewStringRuleWithError(
	func(s string) bool {
		return kindRegex.MatchString(s)
	},
	validation.NewError("validation_kind_label", "must be lowercase alphanumeric with hyphens or underscores"),
)
