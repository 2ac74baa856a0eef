package dialer

import (
	"context"
	"errors"
	"net"
	"strconv"
)

type ResolveConfig struct {
	CustomDNSServer string            // host:port, the system resolver is used if empty
	Network         string            // one of "ip4", "ip6", default is "ip"
	StaticHosts     map[string]string // resembles /etc/hosts
}

func (c *ResolveConfig) Clone() *ResolveConfig {
	if c == nil {
		return nil
	}
	hosts := make(map[string]string, len(c.StaticHosts))
	for k, v := range c.StaticHosts {
		hosts[k] = v
	}
	return &ResolveConfig{
		CustomDNSServer: c.CustomDNSServer,
		Network:         c.Network,
		StaticHosts:     hosts,
	}
}

func (c *ResolveConfig) network() string {
	if c == nil || c.Network == "" {
		return "ip"
	}
	return c.Network
}

func (c *ResolveConfig) server() string {
	if c == nil {
		return ""
	}
	return c.CustomDNSServer
}

func (c *ResolveConfig) static(host string) (string, bool) {
	if c == nil {
		return "", false
	}
	addr, ok := c.StaticHosts[host]
	return addr, ok
}

var errNoAddress = errors.New("no address found")

// this type should not be used outside this file.
// prevents non-custom DNS server contexts to iterate through all keys
type dnsServerCtx struct {
	context.Context
	server string
}

var dnsServerCtxKey = &dnsServerCtx{nil, "dns-server"} // non-nil pointer to any object, definitely unique

func (c dnsServerCtx) Value(key interface{}) interface{} {
	if key == dnsServerCtxKey {
		return c.server
	}
	return c.Context.Value(key)
}

var zeroDialer net.Dialer

var customServerResolver = net.Resolver{
	PreferGo: true,
	Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
		if v, ok := ctx.Value(dnsServerCtxKey).(string); ok && v != "" {
			return zeroDialer.DialContext(ctx, network, v)
		}
		return zeroDialer.DialContext(ctx, network, address)
	},
}

// resolve returns the first address host resolves to. later addresses are
// never tried, a failing first address fails the request.
func (d *CoreDialer) resolve(ctx context.Context, host string, port int) (string, error) {
	p := strconv.Itoa(port)
	if addr, ok := d.ResolveConfig.static(host); ok {
		return net.JoinHostPort(addr, p), nil
	}
	if ip := net.ParseIP(host); ip != nil {
		return net.JoinHostPort(ip.String(), p), nil
	}
	ips, err := d.LookupIPServer(ctx, d.ResolveConfig.network(), host, d.ResolveConfig.server())
	if err != nil {
		return "", err
	}
	if len(ips) == 0 {
		return "", errNoAddress
	}
	return net.JoinHostPort(ips[0].String(), p), nil
}

// LookupIPServer performs DNS lookup for a host on a custom dns server,
// it calls [net.Resolver.LookupIP] with a Go Resolver behind the scenes.
// an empty dns falls back to the system configuration.
func (d *CoreDialer) LookupIPServer(ctx context.Context, network, host, dns string) ([]net.IP, error) {
	if dns == "" {
		return net.DefaultResolver.LookupIP(ctx, network, host)
	}
	return customServerResolver.LookupIP(dnsServerCtx{ctx, dns}, network, host)
}
