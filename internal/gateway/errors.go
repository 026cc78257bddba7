package gateway

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned for HTTP 401/403 responses. It is never retried;
// the configured unauthorized hook has already fired by the time callers see it.
var ErrUnauthorized = errors.New("unauthorized")

// NetworkError means no usable response arrived: timeout, connection refused,
// DNS failure. Distinct from a server that answered with an error status.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx response with a parsed error body (or a 2xx
// envelope that carries success=false).
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error: status %d: %s", e.StatusCode, e.Message)
}

// DecodeError means the response arrived but its body is not well-formed JSON
// (or not the expected envelope shape).
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: %s", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
