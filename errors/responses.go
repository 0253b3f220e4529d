package errors

import (
	"errors"
)

// As is a wrapper around errors.As so callers need not import both packages.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is a wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
