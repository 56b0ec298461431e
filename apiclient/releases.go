package apiclient

import (
	"context"

	"github.com/hexreg/hexreg/metadata"
)

// GetRelease fetches one release of a package.
func (c *Client) GetRelease(ctx context.Context, name, version string, opts ...RequestOption) (*Reply, error) {
	return c.Get(ctx, joinPath("packages", name, "releases", version), opts...)
}

// PublishTarball uploads a package tarball produced by the tarball engine.
func (c *Client) PublishTarball(ctx context.Context, tb []byte) (*Reply, error) {
	return c.Post(ctx, "/publish", tb, "application/octet-stream")
}

// RetireRelease marks a release as retired. Params carries the retirement
// reason and message.
func (c *Client) RetireRelease(ctx context.Context, name, version string, params metadata.Metadata) (*Reply, error) {
	body, err := metadata.Encode(params)
	if err != nil {
		return nil, err
	}
	return c.Post(ctx, joinPath("packages", name, "releases", version, "retire"), body, ContentType)
}

// UnretireRelease clears a release's retirement status.
func (c *Client) UnretireRelease(ctx context.Context, name, version string) (*Reply, error) {
	return c.Delete(ctx, joinPath("packages", name, "releases", version, "retire"))
}

// PublishDocs uploads a documentation tarball for a release.
func (c *Client) PublishDocs(ctx context.Context, name, version string, docs []byte) (*Reply, error) {
	return c.Post(ctx, joinPath("packages", name, "releases", version, "docs"), docs, "application/octet-stream")
}
