package apiclient

import "context"

// ListOwners fetches the owners of a package.
func (c *Client) ListOwners(ctx context.Context, pkg string) (*Reply, error) {
	return c.Get(ctx, joinPath("packages", pkg, "owners"))
}

// AddOwner grants ownership of a package to a user.
func (c *Client) AddOwner(ctx context.Context, pkg, owner string) (*Reply, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return c.request(ctx, "PUT", joinPath("packages", pkg, "owners", owner), nil, "", nil)
}

// DeleteOwner revokes a user's ownership of a package.
func (c *Client) DeleteOwner(ctx context.Context, pkg, owner string) (*Reply, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return c.Delete(ctx, joinPath("packages", pkg, "owners", owner))
}
