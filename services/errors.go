package services

import (
	"errors"
	"fmt"
)

// Error taxonomy for caller-correctable failures. Controllers map these to
// HTTP status codes with errors.Is; anything else is treated as a store
// failure and surfaces on the generic error path.
var (
	// ErrInvalidRequest marks malformed, missing or out-of-range input.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound marks a referenced cart, line or product that does not exist.
	ErrNotFound = errors.New("not found")
)

func invalidRequestf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidRequest}, args...)...)
}

func notFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}
