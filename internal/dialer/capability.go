package dialer

// Capabilities describes what the platform is able to do. it is detected
// once at startup and handed to the dialer, nothing here changes afterwards.
type Capabilities struct {
	Timeout bool // sockets accept a timeout
	TLS     bool // https can be spoken
}

// DetectCapabilities reports the capabilities of the running binary. socket
// deadlines are available wherever the Go runtime is, tls is available
// unless the binary was built with the hass_notls tag.
func DetectCapabilities() Capabilities {
	return Capabilities{Timeout: true, TLS: tlsSupported}
}
