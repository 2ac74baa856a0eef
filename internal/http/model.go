package http

import (
	"context"
	"io"
	"time"
)

// Dialer opens the stream a single request is written to and its response
// is read from. the stream is closed when the response is released.
type Dialer interface {
	Dial(ctx context.Context, r *PreparedRequest) (io.ReadWriteCloser, error)
	Unwrap() Dialer
}

type Request struct {
	Method string
	URL    string

	// JSON is serialized with encoding/json and sent as the request body.
	// a nil JSON sends no body at all.
	JSON    interface{}
	Timeout time.Duration
	Header  Headers
}

// Header is a single request header line. names are written as is.
type Header struct {
	Name, Value string
}

// Headers keeps headers in the order they are added. unlike
// [net/http.Header], names are neither canonicalized nor deduplicated.
type Headers []Header

func (h Headers) Add(name, value string) Headers {
	return append(h, Header{name, value})
}

// Get returns the value of the first header named exactly name.
func (h Headers) Get(name string) string {
	for _, kv := range h {
		if kv.Name == name {
			return kv.Value
		}
	}
	return ""
}

func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	return append(Headers(nil), h...)
}
