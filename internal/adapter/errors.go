package adapter

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork marks transport-level failures (timeout, DNS, connection
	// refused). Retryable by the caller; never auto-retried here.
	ErrNetwork = errors.New("network transport failure")

	// ErrUnauthorized marks a 401 from the backend.
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrNotFound marks a 404 from the backend.
	ErrNotFound = errors.New("entity not found on backend")
)

// NetworkError wraps a failure that happened before any backend response
// arrived.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// BackendError is a non-2xx backend response. Message carries the server's
// body verbatim, never reinterpreted.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

// Is lets callers match well-known statuses with [errors.Is] without
// inspecting the code themselves.
func (e *BackendError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == 401
	case ErrNotFound:
		return e.StatusCode == 404
	default:
		return false
	}
}
