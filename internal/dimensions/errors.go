// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dimensions

import (
	"errors"
	"fmt"
)

// ErrAPIKeyMissing is returned by TokenSource.Token when no API key is
// configured. The check runs before any network call.
var ErrAPIKeyMissing = errors.New("dimensions API key is not configured")

// ServiceError is a non-2xx reply from the Dimensions service. It carries the
// upstream status code and body text so callers can decide how to map it.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("dimensions returned HTTP %d: %s", e.StatusCode, e.Body)
}

// NetworkError means no HTTP response was obtained at all: the connection
// could not be established or was interrupted before a status arrived.
type NetworkError struct {
	Reason string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error contacting dimensions: %s", e.Reason)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError means the authentication step failed, whether the auth endpoint
// replied with an error status or could not be reached. The underlying
// ServiceError or NetworkError is preserved for diagnostics.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("dimensions authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// FormatError means a payload did not parse as the expected JSON or lacked an
// expected field. It is distinct from ServiceError: the server replied with a
// success status but the body was unusable.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }
