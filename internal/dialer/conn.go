package dialer

import (
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"time"
)

// timeoutConn re-arms the deadline before every read and write, so the
// timeout behaves like a socket level one: it bounds each operation, not
// the request as a whole.
type timeoutConn struct {
	net.Conn
	timeout time.Duration
}

func (c *timeoutConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c *timeoutConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}

// conn is the stream handed to the transport. closing it more than once is
// harmless.
type conn struct {
	conn     net.Conn
	isClosed atomic.Bool
	logger   *slog.Logger
}

func (c *conn) Write(p []byte) (n int, err error) {
	n, err = c.conn.Write(p)
	if err != nil {
		c.logger.Debug("dialer: error on write", "remote", c.conn.RemoteAddr(), "error", err)
	}
	return
}

func (c *conn) Read(p []byte) (n int, err error) {
	n, err = c.conn.Read(p)
	if err != nil && err != io.EOF {
		c.logger.Debug("dialer: error on read", "remote", c.conn.RemoteAddr(), "error", err)
	}
	return
}

func (c *conn) Close() error {
	if !c.isClosed.CompareAndSwap(false, true) {
		return nil
	}
	return c.conn.Close()
}
