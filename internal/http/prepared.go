package http

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var schemes = map[string]int{
	"http": 80, "https": 443,
}

// Endpoint is the decomposed request URL. it is computed for every request
// and never cached, since connections are never reused.
type Endpoint struct {
	Scheme string
	Host   string
	Port   int
	Path   string // without the leading slash, may be empty
}

func (e Endpoint) Address() string {
	return e.Host + ":" + strconv.Itoa(e.Port)
}

type PreparedRequest struct {
	*Request

	Endpoint Endpoint
	Header   Headers
	Body     []byte // serialized JSON, nil if there is no payload
}

// Prepare validates the request and decomposes its URL. no I/O happens here,
// all configuration errors except capability checks surface at this stage.
func (r *Request) Prepare() (*PreparedRequest, error) {
	switch r.Method {
	case MethodGet, MethodPost:
	default:
		return nil, fmt.Errorf("%w: unsupported method %q", ErrConfiguration, r.Method)
	}
	ep, err := ParseEndpoint(r.URL)
	if err != nil {
		return nil, err
	}
	if !httpguts.ValidHostHeader(ep.Host) {
		return nil, fmt.Errorf("%w: invalid host %q", ErrConfiguration, ep.Host)
	}
	for _, h := range r.Header {
		if !httpguts.ValidHeaderFieldName(h.Name) || !httpguts.ValidHeaderFieldValue(h.Value) {
			return nil, fmt.Errorf("%w: invalid header %q", ErrConfiguration, h.Name)
		}
	}
	if r.Timeout < 0 {
		return nil, fmt.Errorf("%w: negative timeout %s", ErrConfiguration, r.Timeout)
	}

	pr := &PreparedRequest{
		Request: r, Endpoint: ep,
		Header: r.Header.Clone(),
	}
	if r.JSON != nil {
		if pr.Body, err = json.Marshal(r.JSON); err != nil {
			return nil, fmt.Errorf("%w: encoding payload: %v", ErrConfiguration, err)
		}
	}
	return pr, nil
}

// ParseEndpoint splits scheme://host[:port]/path. the host part is taken
// literally, a colon in it always separates the port.
func ParseEndpoint(rawURL string) (Endpoint, error) {
	parts := strings.SplitN(rawURL, "/", 4)
	if len(parts) < 3 || !strings.HasSuffix(parts[0], ":") || parts[1] != "" {
		return Endpoint{}, fmt.Errorf("%w: malformed url %q", ErrConfiguration, rawURL)
	}
	ep := Endpoint{Scheme: strings.TrimSuffix(parts[0], ":"), Host: parts[2]}
	port, ok := schemes[ep.Scheme]
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, ep.Scheme)
	}
	if host, p, found := strings.Cut(ep.Host, ":"); found {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 || n > 65535 {
			return Endpoint{}, fmt.Errorf("%w: invalid port %q", ErrConfiguration, p)
		}
		ep.Host, port = host, n
	}
	if ep.Host == "" {
		return Endpoint{}, fmt.Errorf("%w: empty host", ErrConfiguration)
	}
	ep.Port = port
	if len(parts) == 4 {
		ep.Path = parts[3]
	}
	return ep, nil
}
