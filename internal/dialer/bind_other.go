//go:build !linux
// +build !linux

package dialer

import (
	"syscall"
)

const bindSupported = false

func BindToDevice(iface string) func(network, address string, c syscall.RawConn) error {
	return func(_, _ string, _ syscall.RawConn) error {
		return ErrBindUnsupported
	}
}
