package casper

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrInvalidSession indicates the server answered the handshake with a
	// session record that reports failure.
	ErrInvalidSession = errors.New("invalid session")

	// ErrMissingDependency indicates New was called without a required collaborator.
	ErrMissingDependency = errors.New("missing dependency")
)

// ConnectionError represents a failed socket handshake or an invalid
// session payload. It always ends in the logout flow and is never shown as
// an in-app error state.
type ConnectionError struct {
	Op  string // Operation that failed (e.g., "connect_primary", "connect_secondary")
	Err error  // Underlying error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("casper: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("casper: %s", e.Op)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// SetupError represents a failure after the connection was established,
// while fetching the menu or setting up the application. It surfaces as the
// error state with the underlying message.
type SetupError struct {
	Op  string // Operation that failed (e.g., "fetch_menu", "setup")
	Err error  // Underlying error
}

func (e *SetupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("casper: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("casper: %s", e.Op)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// RouteLoadError represents a page whose module or element could not be
// loaded. The not-found page is shown instead; the session state is not affected.
type RouteLoadError struct {
	Page string // Page identifier that failed
	Path string // Module path that was loaded
	Err  error  // Underlying error
}

func (e *RouteLoadError) Error() string {
	return fmt.Sprintf("casper: load page %s from %s: %v", e.Page, e.Path, e.Err)
}

func (e *RouteLoadError) Unwrap() error {
	return e.Err
}

// IsConnectionError checks if an error is a connection error.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsSetupError checks if an error is a setup error.
func IsSetupError(err error) bool {
	var setupErr *SetupError
	return errors.As(err, &setupErr)
}

// IsRouteLoadError checks if an error is a page load error.
func IsRouteLoadError(err error) bool {
	var loadErr *RouteLoadError
	return errors.As(err, &loadErr)
}
