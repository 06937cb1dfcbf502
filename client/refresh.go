package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Tokens is the credential pair issued by the API. Refresh is empty when the
// server does not rotate refresh tokens.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Refresher exchanges a refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (Tokens, error)
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context, refreshToken string) (Tokens, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	return f(ctx, refreshToken)
}

// HTTPRefresher posts {"refresh": token} to URL and expects {"access": token}
// back. Requests go straight to Client and are never intercepted.
type HTTPRefresher struct {
	URL    string
	Client *http.Client
}

func (r *HTTPRefresher) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	body, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return Tokens{}, err
	}
	var tokens Tokens
	if err := postJSON(ctx, r.httpClient(), r.URL, body, &tokens); err != nil {
		return Tokens{}, fmt.Errorf("refreshing access token: %w", err)
	}
	return tokens, nil
}

func (r *HTTPRefresher) httpClient() *http.Client {
	if r.Client != nil {
		return r.Client
	}
	return http.DefaultClient
}

// postJSON sends body to url and decodes a token response into out.
func postJSON(ctx context.Context, hc *http.Client, url string, body []byte, out *Tokens) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Method:     http.MethodPost,
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Header:     resp.Header,
			Body:       data,
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding token response: %w", err)
	}
	if out.Access == "" {
		return ErrMissingAccessToken
	}
	return nil
}
