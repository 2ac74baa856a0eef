// package transport contains the wire codec of the client: a request writer
// and a status line/header reader for the HTTP/1.0 message syntax (RFC1945).
//
// nothing beyond RFC1945 is spoken. the connection is never reused, so the
// end of the response body is signaled by the server closing the connection
// and response headers (Content-Length included) are not interpreted.

package transport
