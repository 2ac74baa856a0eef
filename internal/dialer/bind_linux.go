//go:build linux
// +build linux

package dialer

import (
	"syscall"

	"golang.org/x/sys/unix"
)

const bindSupported = true

// BindToDevice returns a [net.Dialer.Control] hook restricting the socket
// to the named interface with SO_BINDTODEVICE.
func BindToDevice(iface string) func(network, address string, c syscall.RawConn) error {
	return func(_, _ string, c syscall.RawConn) error {
		var serr error
		if err := c.Control(func(fd uintptr) {
			serr = unix.BindToDevice(int(fd), iface)
		}); err != nil {
			return err
		}
		return serr
	}
}
