// Package errors provides centralized error definitions for the application.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Upstream fetch errors.
var (
	// ErrUpstreamStatus indicates the artwork page fetch returned a
	// non-success HTTP status. Wrapped with the status code.
	ErrUpstreamStatus = errors.New("upstream status not OK")

	// ErrTooManyRedirects indicates too many HTTP redirects.
	ErrTooManyRedirects = errors.New("too many redirects")
)

// Metadata resolution errors.
var (
	// ErrMetadataNotFound indicates the page carried no artwork records.
	ErrMetadataNotFound = errors.New("artwork metadata not found")

	// ErrMatureContent indicates the artwork is age-restricted and must
	// not be previewed.
	ErrMatureContent = errors.New("mature content")
)

// Configuration errors.
var (
	// ErrNoPlatformConfigured indicates no chat platform credentials were
	// provided at startup.
	ErrNoPlatformConfigured = errors.New("no platform configured")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
