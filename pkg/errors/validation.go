package errors

import (
	"regexp"
	"unicode"
)

// queryNameRegex matches built-in query names ("deleted-elements").
var queryNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ValidateQueryName validates a query name received from the CLI or HTTP API.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - Maximum length of 64 characters
//   - Lowercase letters, digits and dashes only, starting with a letter
func ValidateQueryName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidQuery, "query name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidQuery, "query name too long (max 64 characters)")
	}
	if !queryNameRegex.MatchString(name) {
		return New(ErrCodeInvalidQuery, "invalid query name: %q", name)
	}
	return nil
}

// ValidateArgument validates a query argument key and value.
// Keys follow the query name rules; values may be anything printable up to
// 1024 characters.
func ValidateArgument(key, value string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "argument name cannot be empty")
	}
	if !queryNameRegex.MatchString(key) {
		return New(ErrCodeInvalidInput, "invalid argument name: %q", key)
	}
	if len(value) > 1024 {
		return New(ErrCodeInvalidInput, "argument %s too long (max 1024 characters)", key)
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "argument %s contains invalid control characters", key)
		}
	}
	return nil
}
