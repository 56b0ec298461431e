// Package transporttest provides a canned-route transport.Client for tests.
package transporttest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hexreg/hexreg/transport"
)

// Route is one canned response, matched on method and URI prefix.
type Route struct {
	// Method matches the request method. Empty means GET.
	Method string

	// Prefix matches the start of the request URI.
	Prefix string

	// Status is the response status. Zero means 200.
	Status int

	// Header holds extra response headers.
	Header map[string]string

	// Body is the response body.
	Body []byte

	// Protected routes return 401 when no authorization header is sent.
	Protected bool

	// ETag, when set, is returned as the etag header; a request carrying
	// the same value in if-none-match gets 304 with an empty body.
	ETag string
}

// Fixture is a transport.Client backed by canned routes. Requests that
// match no route panic: a missing fixture is a broken test, not a
// recoverable condition.
type Fixture struct {
	routes []Route
}

// New builds a fixture from routes. Matching is first-wins in the order
// given.
func New(routes ...Route) *Fixture {
	return &Fixture{routes: routes}
}

var _ transport.Client = (*Fixture)(nil)

// Request implements transport.Client.
func (f *Fixture) Request(_ context.Context, method, uri string, headers map[string]string, _ []byte) (*transport.Response, error) {
	for _, rt := range f.routes {
		m := rt.Method
		if m == "" {
			m = http.MethodGet
		}
		if !strings.EqualFold(m, method) || !strings.HasPrefix(uri, rt.Prefix) {
			continue
		}

		if rt.Protected && headers["authorization"] == "" {
			return &transport.Response{StatusCode: http.StatusUnauthorized, Header: http.Header{}}, nil
		}
		if rt.ETag != "" && headers["if-none-match"] == rt.ETag {
			return &transport.Response{
				StatusCode: http.StatusNotModified,
				Header:     http.Header{"Etag": []string{rt.ETag}},
			}, nil
		}

		status := rt.Status
		if status == 0 {
			status = http.StatusOK
		}
		hdr := http.Header{}
		if rt.ETag != "" {
			hdr.Set("etag", rt.ETag)
		}
		for k, v := range rt.Header {
			hdr.Set(k, v)
		}
		return &transport.Response{StatusCode: status, Header: hdr, Body: rt.Body}, nil
	}
	panic(fmt.Sprintf("transporttest: no fixture for %s %s", method, uri))
}
