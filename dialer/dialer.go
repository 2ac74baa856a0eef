package dialer

import (
	"github.com/frankli0324/go-hass/internal/dialer"
)

// Dialers are responsible for creating the underlying stream a request is
// written to and its response is read from, for example a raw TCP connection
// optionally wrapped in TLS.
//
// A Dialer MUST NOT hold connection states: every call opens a new stream
// and the stream is closed when the response is released. It SHOULD hold
// the connection related configs like [ResolveConfig] or *[crypto/tls.Config].
type Dialer = dialer.Dialer

// CoreDialer is the default implementation of the [Dialer] interface. It would
// be used by a zero value [hass.Client].
type CoreDialer = dialer.CoreDialer

// Capabilities tells the [CoreDialer] whether socket timeouts and tls are
// available. detect them once with [DetectCapabilities] and pass the result
// around instead of consulting globals.
type Capabilities = dialer.Capabilities

// we need a dedicated resolver for two scenarios:
//
//  1. pin the hub's name to an address on networks without local DNS
//  2. to customize the DNS server used for resolving hostname
//
// the standard library didn't provide a intuitive way of
// setting DNS server addresses since it only follows the
// system configuration (e.g. /etc/resolv.conf), leaving us only
// one option of using [net.Resolver.Dial] hook with a Go Resolver.
//
// only the first resolved address is ever dialed.
type ResolveConfig = dialer.ResolveConfig

var (
	NewCoreDialer      = dialer.NewCoreDialer
	DetectCapabilities = dialer.DetectCapabilities
	BindToDevice       = dialer.BindToDevice
	IsTimeout          = dialer.IsTimeout
)
