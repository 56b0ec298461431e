package apiclient

import (
	"context"

	"github.com/hexreg/hexreg/metadata"
)

// GetUser fetches a user by username.
func (c *Client) GetUser(ctx context.Context, username string) (*Reply, error) {
	return c.Get(ctx, joinPath("users", username))
}

// CreateUser registers a new account.
func (c *Client) CreateUser(ctx context.Context, username, password, email string) (*Reply, error) {
	body, err := metadata.Encode(metadata.Metadata{
		"username": username,
		"password": password,
		"email":    email,
	})
	if err != nil {
		return nil, err
	}
	return c.Post(ctx, "/users", body, ContentType)
}

// Me fetches the account the configured API key belongs to.
func (c *Client) Me(ctx context.Context) (*Reply, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return c.Get(ctx, "/users/me")
}

// ResetPassword starts a password reset for the given username or email.
func (c *Client) ResetPassword(ctx context.Context, usernameOrEmail string) (*Reply, error) {
	return c.Post(ctx, joinPath("users", usernameOrEmail, "reset"), nil, "")
}
