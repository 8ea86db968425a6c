package mediabridge

import "errors"

// Sentinel errors for receiver operations.
// These errors enable reliable error classification using errors.Is().

var (
	// ErrInvalidConfig indicates a Config value outside the accepted
	// range at receiver construction.
	ErrInvalidConfig = errors.New("invalid receiver configuration")
)
