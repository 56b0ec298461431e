// Package transport defines the HTTP seam used by the registry and API
// clients: a single-method interface over request/response values, with a
// net/http realization for production and a fixture realization for tests
// in the transporttest subpackage.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Response is the outcome of a request with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client issues a single HTTP request. Implementations must be safe for
// concurrent use; the library keeps no request state of its own.
//
// Header keys are lowercase. Timeouts, retries, and proxies are the
// realization's concern.
type Client interface {
	Request(ctx context.Context, method, url string, headers map[string]string, body []byte) (*Response, error)
}

type httpClient struct {
	hc *http.Client
}

// Default returns a Client over http.DefaultClient.
func Default() Client {
	return New(http.DefaultClient)
}

// New returns a Client over the given http.Client.
func New(hc *http.Client) Client {
	return &httpClient{hc: hc}
}

func (c *httpClient) Request(ctx context.Context, method, url string, headers map[string]string, body []byte) (*Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: read body: %w", err)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
