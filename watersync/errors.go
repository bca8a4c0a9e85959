// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package watersync

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession means the operation needs a current producer and none
	// is set.
	ErrNoSession = errors.New("no active session")

	// ErrPartialRegistration means the remote producer create succeeded
	// but the property create failed. The remote side is not rolled back
	// (the wire API has no compensating delete); the registration
	// degrades to the offline path and the orphaned remote producer id
	// is logged.
	ErrPartialRegistration = errors.New("partial remote registration")
)

// ValidationError reports caller-supplied data rejected before any
// network or storage call is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
