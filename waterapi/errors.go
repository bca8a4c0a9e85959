// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package waterapi

import (
	"errors"
	"fmt"
)

// Error taxonomy for remote calls. Transport-level failures wrap
// ErrUnreachable; business rejections map to the other sentinels.
var (
	// ErrUnreachable means the remote process could not be reached at all
	// (connection refused, DNS failure, timeout). An HTTP error status is
	// never ErrUnreachable: a 4xx/5xx reply proves the service is up.
	ErrUnreachable = errors.New("remote service unreachable")

	// ErrInvalidCredentials is the remote auth rejection for login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMalformedReply means the remote answered 2xx but the body is
	// missing required fields.
	ErrMalformedReply = errors.New("malformed remote reply")
)

// RemoteError carries a non-2xx status the taxonomy has no sentinel for.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote service returned status %d: %s", e.StatusCode, e.Message)
}
