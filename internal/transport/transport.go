package transport

import (
	"io"

	"github.com/frankli0324/go-hass/internal/http"
)

type Transport interface {
	Read(r io.Reader) (*http.Response, error)
	Write(w io.Writer, req *http.PreparedRequest) error
}

var _ Transport = HTTP10{}
