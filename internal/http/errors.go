package http

import (
	"errors"
	"fmt"
)

// Errors returned by the client. Use errors.Is() to check for these errors
// in calling code; most of them are wrapped with additional context.
var (
	// ErrConfiguration is the parent of every error raised before any I/O
	// takes place.
	ErrConfiguration = errors.New("http: configuration error")

	ErrUnsupportedScheme  = fmt.Errorf("%w: unsupported protocol", ErrConfiguration)
	ErrTimeoutUnsupported = fmt.Errorf("%w: socket timeout is not supported on this platform", ErrConfiguration)
	ErrTLSUnsupported     = fmt.Errorf("%w: https is not supported, tls support is not available", ErrConfiguration)

	// ErrConnection wraps failures during resolution, connect or tls handshake.
	ErrConnection = errors.New("http: connection error")

	// ErrProtocol is returned when the server response can't be parsed.
	ErrProtocol = errors.New("http: malformed response")

	// ErrIO is returned when reading the response body fails before EOF.
	ErrIO = errors.New("http: read error")

	// ErrDecode is returned by Text, DecodeText and JSON.
	ErrDecode = errors.New("http: decode error")

	// ErrStreamClosed is returned when the body is requested after Release
	// and was never read before.
	ErrStreamClosed = errors.New("http: stream closed")

	ErrClientError = errors.New("client error")
	ErrServerError = errors.New("server error")
)

// StatusError is returned by [Response.RaiseForStatus].
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	kind := ErrClientError
	if e.StatusCode >= 500 {
		kind = ErrServerError
	}
	if e.Status == "" {
		return fmt.Sprintf("%s: %d", kind, e.StatusCode)
	}
	return fmt.Sprintf("%s: %d %s", kind, e.StatusCode, e.Status)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrClientError:
		return e.StatusCode >= 400 && e.StatusCode < 500
	case ErrServerError:
		return e.StatusCode >= 500 && e.StatusCode < 600
	}
	return false
}
