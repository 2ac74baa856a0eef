package dialer

import (
	"crypto/tls"
	"log/slog"

	"github.com/frankli0324/go-hass/internal/http"
)

// Dialers handle pretty much everything related to the actual connection,
// including resolving the host, socket timeouts and the tls upgrade.
type Dialer = http.Dialer

type CoreDialer struct {
	// Capabilities is what the platform supports, usually the result of
	// [DetectCapabilities]. requests needing a missing capability fail
	// before any socket is opened.
	Capabilities Capabilities

	ResolveConfig *ResolveConfig

	TLSConfig *tls.Config // the config to use, ServerName is always overridden

	// Interface binds sockets to a network interface, e.g. "wlan0".
	Interface string

	Logger *slog.Logger
}

func NewCoreDialer(caps Capabilities) *CoreDialer {
	return &CoreDialer{Capabilities: caps}
}

func (d *CoreDialer) Clone() *CoreDialer {
	return &CoreDialer{
		Capabilities:  d.Capabilities,
		ResolveConfig: d.ResolveConfig.Clone(),
		TLSConfig:     d.TLSConfig.Clone(),
		Interface:     d.Interface,
		Logger:        d.Logger,
	}
}

func (d *CoreDialer) Unwrap() Dialer {
	return nil
}

func (d *CoreDialer) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
