package http

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// Response owns the connection its request was sent over. the status line
// and headers are already consumed, the stream is positioned at the first
// byte of the body. Release must be called exactly once on every code path.
//
// a Response is not safe for concurrent use.
type Response struct {
	Proto      string
	Status     string // reason phrase, may be empty
	StatusCode int

	body     io.ReadCloser
	content  []byte
	consumed bool
	readErr  error // sticky, the stream is never read again after a failure
	released bool
}

// NewResponse binds a parsed status line to the stream the body is read from.
func NewResponse(proto string, code int, status string, body io.ReadCloser) *Response {
	return &Response{Proto: proto, StatusCode: code, Status: status, body: body}
}

// Bytes reads the body until the server closes the connection. the result
// is cached, later calls don't touch the stream. a failed read is cached as
// well, the partial body is dropped.
func (r *Response) Bytes() ([]byte, error) {
	if r.consumed {
		return r.content, nil
	}
	if r.readErr != nil {
		return nil, r.readErr
	}
	if r.released || r.body == nil {
		return nil, ErrStreamClosed
	}
	b, err := io.ReadAll(r.body)
	if err != nil {
		r.readErr = fmt.Errorf("%w: %w", ErrIO, err)
		return nil, r.readErr
	}
	if b == nil {
		b = []byte{}
	}
	r.content, r.consumed = b, true
	return r.content, nil
}

// Text returns the body as UTF-8 text.
func (r *Response) Text() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: body is not valid utf-8", ErrDecode)
	}
	return string(b), nil
}

// DecodeText returns the body decoded from charset, which is any name
// registered in the WHATWG encoding standard (e.g. "latin1", "shift_jis").
func (r *Response) DecodeText(charset string) (string, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
		return r.Text()
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	s, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return string(s), nil
}

// JSON decodes the body into v.
func (r *Response) JSON(v interface{}) error {
	s, err := r.Text()
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// RaiseForStatus returns a *[StatusError] for 4xx and 5xx responses. the
// body is left untouched.
func (r *Response) RaiseForStatus() error {
	if r.StatusCode >= 400 && r.StatusCode < 600 {
		return &StatusError{StatusCode: r.StatusCode, Status: r.Status}
	}
	return nil
}

// Release closes the underlying connection. calling it again is a no-op.
func (r *Response) Release() error {
	if r.released {
		return nil
	}
	r.released = true
	if r.body == nil {
		return nil
	}
	return r.body.Close()
}

func (r *Response) Close() error {
	return r.Release()
}

func (r *Response) Released() bool {
	return r.released
}
