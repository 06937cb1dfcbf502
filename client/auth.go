package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmcleod/stockroom/storage"
)

// Login exchanges username and password for a token pair at the token
// endpoint and stores both tokens. The exchange bypasses the interceptor, so
// bad credentials surface as a plain 401 *StatusError.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}
	var tokens Tokens
	if err := postJSON(ctx, c.raw, c.URL(c.tokenPath), body, &tokens); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := c.SetTokens(tokens); err != nil {
		return err
	}
	c.auth.log(ctx, EventLoginSucceeded, slog.String("username", username))
	return nil
}

// SetTokens stores a token pair obtained elsewhere.
func (c *Client) SetTokens(tokens Tokens) error {
	if tokens.Access == "" {
		return ErrMissingAccessToken
	}
	if err := c.store.Set(storage.AccessTokenKey, tokens.Access); err != nil {
		return fmt.Errorf("storing access token: %w", err)
	}
	if tokens.Refresh != "" {
		if err := c.store.Set(storage.RefreshTokenKey, tokens.Refresh); err != nil {
			return fmt.Errorf("storing refresh token: %w", err)
		}
	}
	return nil
}

// Authenticated reports whether an access token is stored. It does not
// check the token with the server.
func (c *Client) Authenticated() bool {
	_, ok, err := storage.Lookup(c.store, storage.AccessTokenKey)
	return err == nil && ok
}

// Logout clears every stored credential and navigates to the login page.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("clearing session storage: %w", err)
	}
	c.auth.log(ctx, EventLogout)
	c.navigator.Navigate(LoginPath)
	return nil
}
