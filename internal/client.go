package internal

import (
	"context"
	"fmt"

	"github.com/frankli0324/go-hass/internal/dialer"
	"github.com/frankli0324/go-hass/internal/http"
	"github.com/frankli0324/go-hass/internal/transport"
)

type Handler = func(ctx context.Context, req *http.PreparedRequest) (*http.Response, error)
type Middleware func(next Handler) Handler

// defaultDialer is used by a zero value Client. capabilities are detected
// once, here, and never change afterwards.
var defaultDialer = dialer.NewCoreDialer(dialer.DetectCapabilities())

var h10 = transport.HTTP10{}

type Client struct {
	middlewares []Middleware
	dialer      http.Dialer
}

func NewClient(d http.Dialer) *Client {
	return &Client{dialer: d}
}

// Use appends mw to the end of the chain. The last "Use"d mw executes first
func (c *Client) Use(mws ...Middleware) {
	c.middlewares = append(c.middlewares, mws...)
}

func (c *Client) UseDialer(f func(http.Dialer) http.Dialer) {
	c.dialer = f(c.getDialer())
}

// UseCoreDialer hands f a copy of the *[dialer.CoreDialer] in use, or of the
// default one if the current dialer doesn't wrap any.
func (c *Client) UseCoreDialer(f func(*dialer.CoreDialer) http.Dialer) {
	if cd := c.coreDialer(); cd != nil {
		c.dialer = f(cd.Clone())
		return
	}
	c.dialer = f(defaultDialer.Clone())
}

// Capabilities reports the capabilities of the core dialer in use. custom
// dialers not wrapping one are assumed to support everything the platform
// does.
func (c *Client) Capabilities() dialer.Capabilities {
	if cd := c.coreDialer(); cd != nil {
		return cd.Capabilities
	}
	return defaultDialer.Capabilities
}

func (c *Client) getDialer() http.Dialer {
	if c.dialer != nil {
		return c.dialer
	}
	return defaultDialer
}

func (c *Client) coreDialer() *dialer.CoreDialer {
	for d := c.getDialer(); d != nil; d = d.Unwrap() {
		if cd, ok := d.(*dialer.CoreDialer); ok {
			return cd
		}
	}
	return nil
}

// CtxDo sends a single request over a fresh connection. on success the
// returned response owns that connection and must be released.
func (c *Client) CtxDo(ctx context.Context, req *http.Request) (*http.Response, error) {
	pr, err := req.Prepare()
	if err != nil {
		return nil, err
	}
	next := c.roundTrip
	for _, mw := range c.middlewares {
		next = mw(next)
	}
	return next(ctx, pr)
}

// CtxDoFunc is CtxDo with the response released once fn returns, panics
// included.
func (c *Client) CtxDoFunc(ctx context.Context, req *http.Request, fn func(*http.Response) error) error {
	resp, err := c.CtxDo(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Release()
	return fn(resp)
}

func (c *Client) roundTrip(ctx context.Context, req *http.PreparedRequest) (*http.Response, error) {
	conn, err := c.getDialer().Dial(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := h10.Write(conn, req); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: writing request: %w", http.ErrConnection, err)
	}
	resp, err := h10.Read(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return resp, nil
}
