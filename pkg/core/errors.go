package core

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when an alteration refers to something that is
// not in the element's current state.
type NotFoundError struct {
	What string // "vertex", "edge", "property", ...
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find %s %q", e.What, e.ID)
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsMissingFetchHint reports whether err is, or wraps, a *MissingFetchHintError.
func IsMissingFetchHint(err error) bool {
	var mf *MissingFetchHintError
	return errors.As(err, &mf)
}
