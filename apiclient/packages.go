package apiclient

import (
	"context"
	"net/url"
	"strconv"
)

// GetPackage fetches a package by name.
func (c *Client) GetPackage(ctx context.Context, name string, opts ...RequestOption) (*Reply, error) {
	return c.Get(ctx, joinPath("packages", name), opts...)
}

// SearchPackages queries the package index. Page is 1-based; zero means
// the server default.
func (c *Client) SearchPackages(ctx context.Context, query string, page int) (*Reply, error) {
	params := url.Values{"search": {query}}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	return c.Get(ctx, withQuery("/packages", params))
}
