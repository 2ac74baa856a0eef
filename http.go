// Package hass is a client for the Home Assistant REST API meant for small
// devices. requests are plain HTTP/1.0 over a connection opened for that
// single request; the response owns the connection until it is released.
package hass

import (
	"github.com/frankli0324/go-hass/internal"
	"github.com/frankli0324/go-hass/internal/dialer"
	"github.com/frankli0324/go-hass/internal/http"
)

type Client = internal.Client
type Request = http.Request
type Response = http.Response
type Header = http.Header
type Headers = http.Headers
type StatusError = http.StatusError

type Handler = internal.Handler
type Middleware = internal.Middleware

type Capabilities = dialer.Capabilities

const (
	MethodGet  = http.MethodGet
	MethodPost = http.MethodPost
)

var (
	NewClient          = internal.NewClient
	Logging            = internal.Logging
	DetectCapabilities = dialer.DetectCapabilities
)

var (
	ErrConfiguration      = http.ErrConfiguration
	ErrUnsupportedScheme  = http.ErrUnsupportedScheme
	ErrTimeoutUnsupported = http.ErrTimeoutUnsupported
	ErrTLSUnsupported     = http.ErrTLSUnsupported
	ErrConnection         = http.ErrConnection
	ErrProtocol           = http.ErrProtocol
	ErrIO                 = http.ErrIO
	ErrDecode             = http.ErrDecode
	ErrStreamClosed       = http.ErrStreamClosed
	ErrClientError        = http.ErrClientError
	ErrServerError        = http.ErrServerError
)
