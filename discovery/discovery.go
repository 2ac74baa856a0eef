// Package discovery finds a Home Assistant instance on the local network.
//
// a fixed query is sent to a multicast group over UDP and the first reply,
// a JSON object carrying at least the instance's base url, is used.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/net/ipv4"

	hass "github.com/frankli0324/go-hass"
	"github.com/frankli0324/go-hass/internal/dialer"
)

const (
	MulticastAddr  = "224.0.0.123:38123"
	DefaultTimeout = 5 * time.Second
)

// Query is the payload Home Assistant answers to.
var Query = []byte("Home Assistants Assemble!")

var (
	ErrNoHost  = errors.New("discovery: reply has no host")
	ErrNoReply = errors.New("discovery: no reply")
)

type Config struct {
	Addr      string        // where the query is sent, MulticastAddr if empty
	Timeout   time.Duration // DefaultTimeout if zero
	Interface string        // binds the socket to an interface if set (linux only)
	Logger    *slog.Logger
}

// Info is the reply of an instance.
type Info struct {
	Host                string `json:"host"`
	APIPassword         string `json:"api_password,omitempty"`
	Name                string `json:"name,omitempty"`
	Version             string `json:"version,omitempty"`
	RequiresAPIPassword bool   `json:"requires_api_password,omitempty"`
}

// Scan sends a single query and waits for a single reply.
func Scan(ctx context.Context, cfg Config) (*Info, error) {
	if cfg.Addr == "" {
		cfg.Addr = MulticastAddr
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	addr, err := net.ResolveUDPAddr("udp4", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("discovery: resolving %s: %w", cfg.Addr, err)
	}
	lc := net.ListenConfig{}
	if cfg.Interface != "" {
		lc.Control = dialer.BindToDevice(cfg.Interface)
	}
	pc, err := lc.ListenPacket(ctx, "udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("discovery: opening socket: %w", err)
	}
	defer pc.Close()

	if addr.IP.IsMulticast() {
		p := ipv4.NewPacketConn(pc)
		if err := p.SetMulticastTTL(1); err != nil {
			logger.Warn("discovery: setting multicast ttl", "error", err)
		}
		if err := p.SetMulticastLoopback(true); err != nil {
			logger.Warn("discovery: enabling multicast loopback", "error", err)
		}
	}

	deadline := time.Now().Add(cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := pc.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { pc.SetDeadline(time.Now()) })
	defer stop()

	if _, err := pc.WriteTo(Query, addr); err != nil {
		return nil, fmt.Errorf("discovery: sending query: %w", err)
	}
	logger.Debug("discovery: query sent", "addr", addr)

	buf := make([]byte, 1024)
	n, from, err := pc.ReadFrom(buf)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrNoReply, err)
	}

	info := &Info{}
	if err := json.Unmarshal(buf[:n], info); err != nil {
		return nil, fmt.Errorf("discovery: decoding reply from %s: %w", from, err)
	}
	if info.Host == "" {
		return nil, ErrNoHost
	}
	logger.Info("discovery: found instance", "host", info.Host, "from", from)
	return info, nil
}

// GetInstance scans for an instance and returns an api for it. the password
// announced by the instance wins over the given one.
func GetInstance(ctx context.Context, cfg Config, password string, opts ...hass.Option) (*hass.API, error) {
	info, err := Scan(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if info.APIPassword != "" {
		password = info.APIPassword
	}
	if password != "" {
		opts = append(opts, hass.WithPassword(password))
	}
	return hass.New(info.Host, opts...)
}
