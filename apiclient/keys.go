package apiclient

import (
	"context"

	"github.com/hexreg/hexreg/metadata"
)

// KeyPermission scopes an API key, e.g. domain "api" or "repository" with
// an optional resource.
type KeyPermission struct {
	Domain   string
	Resource string
}

// ListKeys fetches all keys of the authenticated account.
func (c *Client) ListKeys(ctx context.Context) (*Reply, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return c.Get(ctx, "/keys")
}

// GetKey fetches one key by name.
func (c *Client) GetKey(ctx context.Context, name string) (*Reply, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return c.Get(ctx, joinPath("keys", name))
}

// CreateKey creates a key with the given permissions.
func (c *Client) CreateKey(ctx context.Context, name string, permissions []KeyPermission) (*Reply, error) {
	perms := make([]any, len(permissions))
	for i, p := range permissions {
		perm := map[string]any{"domain": p.Domain}
		if p.Resource != "" {
			perm["resource"] = p.Resource
		}
		perms[i] = perm
	}
	body, err := metadata.Encode(metadata.Metadata{
		"name":        name,
		"permissions": perms,
	})
	if err != nil {
		return nil, err
	}
	return c.Post(ctx, "/keys", body, ContentType)
}

// DeleteKey revokes one key by name.
func (c *Client) DeleteKey(ctx context.Context, name string) (*Reply, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return c.Delete(ctx, joinPath("keys", name))
}

// DeleteAllKeys revokes every key of the authenticated account, including
// the one making the request.
func (c *Client) DeleteAllKeys(ctx context.Context) (*Reply, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return c.Delete(ctx, "/keys")
}
