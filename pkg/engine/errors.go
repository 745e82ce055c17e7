package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is wrapped by every precondition failure, such as an
	// empty id or a missing edge endpoint.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrClosed is returned by operations on a closed Engine.
	ErrClosed = errors.New("engine is closed")
)

// SecurityError is returned when a caller presents authorization labels that
// were never registered with CreateAuthorizations.
type SecurityError struct {
	// Labels are the unregistered labels, sorted.
	Labels []string
}

// Error implements the error interface.
func (e *SecurityError) Error() string {
	return fmt.Sprintf("unknown authorizations [%s]", strings.Join(e.Labels, ","))
}

// IsSecurityError returns true if err is, or wraps, a *SecurityError.
func IsSecurityError(err error) bool {
	var se *SecurityError
	return errors.As(err, &se)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
