// Package client is the HTTP client every part of the inventory application
// uses to reach the REST API. It resolves paths against a fixed base address,
// sends JSON by default, attaches the stored bearer token and transparently
// renews it once when the API answers 401.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jmcleod/stockroom/internal/uuid"
	"github.com/jmcleod/stockroom/storage"
)

// Request describes an outgoing API call. Path is resolved against the base
// URL unless it is already absolute.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// Client issues API requests through the authenticating Transport.
type Client struct {
	baseURL    string
	refreshURL string
	tokenPath  string
	header     http.Header
	timeout    time.Duration
	coalesce   bool

	base      http.RoundTripper
	store     storage.Store
	refresher Refresher
	navigator Navigator
	logger    *slog.Logger
	auth      *authLogger

	transport *Transport
	http      *http.Client
	raw       *http.Client
}

// New creates a Client reading and writing session credentials in store.
func New(store storage.Store, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrNotConfigured)
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		refreshURL: DefaultRefreshURL,
		tokenPath:  DefaultTokenPath,
		header:     make(http.Header),
		store:      store,
	}
	c.header.Set("Content-Type", "application/json")
	c.header.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrNotConfigured)
	}
	if c.base == nil {
		c.base = http.DefaultTransport
	}
	if c.navigator == nil {
		c.navigator = noopNavigator{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	c.auth = newAuthLogger(c.logger)

	c.raw = &http.Client{Transport: c.base, Timeout: c.timeout}
	if c.refresher == nil {
		if c.refreshURL == "" {
			return nil, fmt.Errorf("%w: refresh URL is required", ErrNotConfigured)
		}
		c.refresher = &HTTPRefresher{URL: c.refreshURL, Client: c.raw}
	}
	c.transport = &Transport{
		base:      c.base,
		store:     c.store,
		refresher: c.refresher,
		navigator: c.navigator,
		auth:      c.auth,
		coalesce:  c.coalesce,
	}
	c.http = &http.Client{Transport: c.transport, Timeout: c.timeout}
	return c, nil
}

// HTTPClient returns an *http.Client that runs through the same interceptor,
// for callers that need streaming or other net/http features.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Store returns the session credential store.
func (c *Client) Store() storage.Store {
	return c.store
}

// BaseURL returns the address request paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL resolves path against the base URL. Absolute URLs are returned as-is.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Issue sends req and returns the read response. Responses outside 2xx are
// returned as *StatusError; transport failures are returned unchanged.
func (c *Client) Issue(ctx context.Context, req *Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	url := c.URL(req.Path)

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	for k, v := range c.header {
		hreq.Header[k] = append([]string(nil), v...)
	}
	for k, v := range req.Header {
		hreq.Header[k] = append([]string(nil), v...)
	}
	if hreq.Header.Get(RequestIDHeader) == "" {
		hreq.Header.Set(RequestIDHeader, uuid.New())
	}

	hresp, err := c.http.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer hresp.Body.Close()

	data, err := io.ReadAll(hresp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	resp := &Response{StatusCode: hresp.StatusCode, Header: hresp.Header, Body: data}
	if hresp.StatusCode < 200 || hresp.StatusCode > 299 {
		return resp, &StatusError{
			Method:     method,
			URL:        url,
			StatusCode: hresp.StatusCode,
			Status:     hresp.Status,
			Header:     hresp.Header,
			Body:       data,
		}
	}
	return resp, nil
}

// Do marshals in (when non-nil) as the JSON body, issues the request and
// decodes the JSON response into out (when non-nil).
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	req := &Request{Method: method, Path: path}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		req.Body = data
	}
	resp, err := c.Issue(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := resp.Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPut, path, in, out)
}

func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPatch, path, in, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}
