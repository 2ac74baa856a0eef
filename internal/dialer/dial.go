package dialer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/frankli0324/go-hass/internal/http"
)

var ErrBindUnsupported = fmt.Errorf("%w: binding to an interface is not supported on this platform", http.ErrConfiguration)

// Dial opens a fresh connection for r. capability checks happen before
// anything touches the network.
func (d *CoreDialer) Dial(ctx context.Context, r *http.PreparedRequest) (io.ReadWriteCloser, error) {
	ep := r.Endpoint
	if r.Timeout > 0 && !d.Capabilities.Timeout {
		return nil, http.ErrTimeoutUnsupported
	}
	if ep.Scheme == "https" && !d.Capabilities.TLS {
		return nil, http.ErrTLSUnsupported
	}
	if d.Interface != "" && !bindSupported {
		return nil, ErrBindUnsupported
	}

	addr, err := d.resolve(ctx, ep.Host, ep.Port)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s: %w", http.ErrConnection, ep.Host, err)
	}

	nd := net.Dialer{Timeout: r.Timeout}
	if d.Interface != "" {
		nd.Control = BindToDevice(d.Interface)
	}
	raw, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", http.ErrConnection, err)
	}
	if r.Timeout > 0 {
		raw = &timeoutConn{Conn: raw, timeout: r.Timeout}
	}

	if ep.Scheme == "https" {
		config := d.TLSConfig.Clone()
		if config == nil {
			config = &tls.Config{}
		}
		config.ServerName = ep.Host
		c := tls.Client(raw, config)
		if err := c.HandshakeContext(ctx); err != nil {
			raw.Close()
			return nil, fmt.Errorf("%w: tls handshake: %w", http.ErrConnection, err)
		}
		raw = c
	}
	d.logger().Debug("dialer: connected", "host", ep.Host, "addr", addr, "tls", ep.Scheme == "https")
	return &conn{conn: raw, logger: d.logger()}, nil
}

// IsTimeout reports whether err was caused by the socket timeout expiring.
func IsTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
