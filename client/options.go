package client

import (
	"log/slog"
	"net/http"
	"time"
)

// Hard-coded endpoints of the inventory API.
const (
	DefaultBaseURL    = "http://103.14.120.137:8080/api/"
	DefaultRefreshURL = "http://103.14.120.137:8080/api/token/refresh/"
	DefaultTokenPath  = "token/"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the address every request path is resolved against.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithRefreshURL sets the endpoint used by the default HTTPRefresher.
func WithRefreshURL(url string) Option {
	return func(c *Client) {
		c.refreshURL = url
	}
}

// WithTokenPath sets the login endpoint, relative to the base URL.
func WithTokenPath(path string) Option {
	return func(c *Client) {
		c.tokenPath = path
	}
}

// WithRefresher replaces the default HTTPRefresher.
func WithRefresher(r Refresher) Option {
	return func(c *Client) {
		c.refresher = r
	}
}

// WithNavigator sets where the client sends the user after an
// unrecoverable authentication failure. The default does nothing.
func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		c.navigator = n
	}
}

// WithBaseTransport sets the round tripper underneath the interceptor.
// Default: http.DefaultTransport.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.base = rt
	}
}

// WithTimeout bounds each request including redirects and the retry.
// Zero, the default, means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHeader adds a default header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.header.Set(key, value)
	}
}

// WithLogger sets the structured logger.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithCoalescedRefresh makes concurrent 401s that hold the same refresh
// token share a single refresh exchange.
func WithCoalescedRefresh(enabled bool) Option {
	return func(c *Client) {
		c.coalesce = enabled
	}
}
