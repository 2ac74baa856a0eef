// package http contains the request descriptor and the response handle,
// which are meant to be exported. the package name is meant to be same with
// the http client package so that IDEs and code editors could pick them up
//
// only a tiny HTTP/1.0 subset is spoken: one request per connection, no
// keep-alive, no chunked encoding, no redirects. the body of a response is
// whatever the server sends until it closes the connection.
package http

const (
	MethodGet  = "GET"
	MethodPost = "POST"
)

const ContentTypeJSON = "application/json"
