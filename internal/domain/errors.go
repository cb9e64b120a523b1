package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Error categories surfaced to callers alongside an HTTP-status-like code.
const (
	CategoryConfiguration = "Configuration Error"
	CategoryParse         = "Parse Error"
)

// Error is the typed failure returned by the discovery and transform engines.
// StatusCode is HTTP-status-like so that a serving layer can propagate it
// directly; the core itself never retries.
type Error struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
	Category   string `json:"category"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// NewConfigurationError reports unusable input: a missing required schema
// argument or a structurally broken source document. Fatal to the call.
func NewConfigurationError(format string, args ...interface{}) *Error {
	return &Error{
		Message:    fmt.Sprintf(format, args...),
		StatusCode: http.StatusBadRequest,
		Category:   CategoryConfiguration,
	}
}

// NewParseError reports a response body that could not be matched against its
// declared schema.
func NewParseError(format string, args ...interface{}) *Error {
	return &Error{
		Message:    fmt.Sprintf(format, args...),
		StatusCode: http.StatusUnprocessableEntity,
		Category:   CategoryParse,
	}
}

// IsConfigurationError reports whether err is (or wraps) a configuration Error.
func IsConfigurationError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Category == CategoryConfiguration
}

// IsParseError reports whether err is (or wraps) a parse Error.
func IsParseError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Category == CategoryParse
}
