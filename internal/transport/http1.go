package transport

import (
	"bufio"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
	"strings"
	"unicode"

	"github.com/frankli0324/go-hass/internal/http"
)

type bodyCloser struct {
	io.Reader
	close func() error
}

func (b bodyCloser) Close() error { return b.close() }

type HTTP10 struct{}

// Write writes an HTTP/1.0 request, e.g.:
//
//	POST /api/states/sensor.temp HTTP/1.0\r\n
//	Host: hass.local\r\n
//	X-HA-access: secret\r\n
//	content-length: 17\r\n
//	content-type: application/json\r\n
//	\r\n
//	{"state": "21.5"}
//
// header names and values are validated by [http.Request.Prepare].
func (t HTTP10) Write(w io.Writer, r *http.PreparedRequest) error {
	header := bufio.NewWriter(w) // default bufsize is 4096
	header.WriteString(r.Method)
	header.WriteString(" /")
	header.WriteString(r.Endpoint.Path)
	header.WriteString(" HTTP/1.0\r\nHost: ")
	header.WriteString(r.Endpoint.Host)
	header.WriteString("\r\n")
	for _, h := range r.Header {
		header.WriteString(h.Name)
		header.WriteString(": ")
		header.WriteString(h.Value)
		header.WriteString("\r\n")
	}
	if r.Body != nil {
		header.WriteString("content-length: ")
		header.WriteString(strconv.Itoa(len(r.Body)))
		header.WriteString("\r\ncontent-type: ")
		header.WriteString(http.ContentTypeJSON)
		header.WriteString("\r\n\r\n")
		header.Write(r.Body)
	} else {
		header.WriteString("\r\n")
	}
	// bufio.Writer keeps the first error, Flush reports it
	return header.Flush()
}

// Read parses the status line and skips the headers. if r is an [io.Closer],
// releasing the returned response closes it.
func (t HTTP10) Read(r io.Reader) (*http.Response, error) {
	closer := io.NopCloser
	if cr, ok := r.(io.Closer); ok {
		closer = func(r io.Reader) io.ReadCloser { return bodyCloser{r, cr.Close} }
	}
	tp := textproto.NewReader(bufio.NewReader(r))

	line, err := tp.ReadLine()
	if err != nil {
		return nil, readError("status line", err)
	}
	proto, code, reason, err := parseStatusLine(line)
	if err != nil {
		return nil, err
	}

	for {
		line, err := tp.ReadLine()
		if err != nil {
			return nil, readError("headers", err)
		}
		if line == "" {
			break
		}
	}
	return http.NewResponse(proto, code, reason, closer(tp.R)), nil
}

// parseStatusLine splits "HTTP/1.0 200 OK" on whitespace into at most three
// fields. the reason phrase is optional.
func parseStatusLine(line string) (proto string, code int, reason string, err error) {
	proto, rest := cutSpace(line)
	status, reason := cutSpace(rest)
	if proto == "" || status == "" {
		return "", 0, "", fmt.Errorf("%w: status line %q", http.ErrProtocol, line)
	}
	if !allDigits(status) {
		return "", 0, "", fmt.Errorf("%w: status code %q", http.ErrProtocol, status)
	}
	code, err = strconv.Atoi(status)
	if err != nil {
		return "", 0, "", fmt.Errorf("%w: status code %q", http.ErrProtocol, status)
	}
	return proto, code, strings.TrimRightFunc(reason, unicode.IsSpace), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func cutSpace(s string) (before, after string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
	}
	return s, ""
}

// readError maps a failed read: the server hanging up early is a protocol
// error, anything else (a timeout, a reset) is a connection error.
func readError(stage string, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: reading %s: %w", http.ErrProtocol, stage, io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("%w: reading %s: %w", http.ErrConnection, stage, err)
}
