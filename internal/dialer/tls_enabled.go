//go:build !hass_notls
// +build !hass_notls

package dialer

const tlsSupported = true
