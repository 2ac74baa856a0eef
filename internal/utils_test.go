package internal_test

import (
	"bufio"
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/frankli0324/go-hass/internal"
	"github.com/frankli0324/go-hass/internal/http"
)

type CombinedReadWriteCloser struct {
	io.Reader
	io.Writer
	io.Closer
}

type TestDialer struct {
	io.ReadWriteCloser
}

// Dial implements http.Dialer.
func (t *TestDialer) Dial(ctx context.Context, r *http.PreparedRequest) (io.ReadWriteCloser, error) {
	return t.ReadWriteCloser, nil
}

// Unwrap implements http.Dialer.
func (t *TestDialer) Unwrap() http.Dialer {
	return nil
}

// SendSingleRequest performs req against an in-memory connection and returns
// a reader producing the raw bytes written by the client.
func SendSingleRequest(t *testing.T, req *http.Request) io.Reader {
	readResponse, writeResponse := io.Pipe()
	go io.Copy(writeResponse, strings.NewReader("HTTP/1.0 200 OK\r\nContent-Length: 0\r\n\r\n"))

	readRequest, writeRequest := io.Pipe()
	c := &internal.Client{}
	c.UseDialer(func(http.Dialer) http.Dialer {
		return &TestDialer{CombinedReadWriteCloser{
			Reader: readResponse,
			Writer: writeRequest,
			Closer: writeRequest,
		}}
	})
	go func() {
		resp, err := c.CtxDo(context.Background(), req)
		if err != nil {
			t.Error(err)
			writeRequest.Close()
			return
		}
		resp.Release()
	}()
	return readRequest
}

// countingReader counts the Read calls reaching the underlying reader.
type countingReader struct {
	io.Reader
	reads int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	return c.Reader.Read(p)
}

type nopCloser struct{ closed int }

func (n *nopCloser) Close() error {
	n.closed++
	return nil
}

// cannedDialer answers every request with response and records the request.
func cannedDialer(response string) (*TestDialer, *strings.Builder, *countingReader, *nopCloser) {
	written := &strings.Builder{}
	reader := &countingReader{Reader: strings.NewReader(response)}
	closer := &nopCloser{}
	return &TestDialer{CombinedReadWriteCloser{
		Reader: reader,
		Writer: written,
		Closer: closer,
	}}, written, reader, closer
}

type rawRequest struct {
	head string
	body []byte
	// contentLength is the value of the content-length header, -1 if absent.
	contentLength int
}

// serve starts a TCP server answering every connection with response. the
// requests received are sent on the returned channel.
func serve(t *testing.T, response string) (string, <-chan rawRequest) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { l.Close() })

	reqs := make(chan rawRequest, 16)
	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				req, err := readRawRequest(bufio.NewReader(c))
				if err != nil {
					return
				}
				reqs <- req
				io.WriteString(c, response)
			}(c)
		}
	}()
	return l.Addr().String(), reqs
}

func readRawRequest(r *bufio.Reader) (rawRequest, error) {
	req := rawRequest{contentLength: -1}
	var head strings.Builder
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return req, err
		}
		head.WriteString(line)
		if line == "\r\n" {
			break
		}
		if name, value, ok := strings.Cut(line, ":"); ok && strings.EqualFold(name, "content-length") {
			req.contentLength, _ = strconv.Atoi(strings.TrimSpace(value))
		}
	}
	req.head = head.String()
	if req.contentLength > 0 {
		req.body = make([]byte, req.contentLength)
		if _, err := io.ReadFull(r, req.body); err != nil {
			return req, err
		}
	}
	return req, nil
}
