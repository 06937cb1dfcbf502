package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/jmcleod/stockroom/storage"
)

// RequestIDHeader correlates an original request with its retry in logs.
const RequestIDHeader = "X-Request-ID"

// Transport is the http.RoundTripper that attaches the stored access token
// to every outgoing request and recovers from 401 responses.
//
// On a 401 it reads the refresh token. Without one, or when the refresh
// exchange fails, it clears the store, navigates to LoginPath and returns the
// original 401 response. When the exchange succeeds it stores the new access
// token and sends the original request once more through the base transport.
// The retry is returned as-is, whatever its status.
//
// Concurrent 401s each run their own exchange unless coalescing is enabled.
type Transport struct {
	base      http.RoundTripper
	store     storage.Store
	refresher Refresher
	navigator Navigator
	auth      *authLogger

	coalesce bool
	group    singleflight.Group
}

var _ http.RoundTripper = (*Transport)(nil)

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out, err := t.prepare(req)
	if err != nil {
		return nil, err
	}
	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	return t.recoverUnauthorized(out, resp)
}

// prepare clones req, makes its body replayable and attaches the bearer token.
func (t *Transport) prepare(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		data, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("buffering request body: %w", err)
		}
		out.Body = io.NopCloser(bytes.NewReader(data))
		out.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
	}

	token, ok, err := storage.Lookup(t.store, storage.AccessTokenKey)
	if err != nil {
		t.auth.logger.Warn("reading access token", "error", err, "request_id", out.Header.Get(RequestIDHeader))
	}
	if ok {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	return out, nil
}

func (t *Transport) recoverUnauthorized(req *http.Request, resp *http.Response) (*http.Response, error) {
	ctx := req.Context()
	reqID := slog.String("request_id", req.Header.Get(RequestIDHeader))

	refreshToken, ok, err := storage.Lookup(t.store, storage.RefreshTokenKey)
	if err != nil {
		t.auth.logger.Warn("reading refresh token", "error", err, reqID)
	}
	if !ok {
		t.endSession(ctx, ErrNoRefreshToken, reqID)
		return resp, nil
	}

	t.auth.log(ctx, EventRefreshStarted, reqID)
	access, err := t.refresh(ctx, refreshToken)
	if err != nil {
		if ctx.Err() != nil {
			// The caller gave up; that says nothing about the session.
			drain(resp)
			return nil, ctx.Err()
		}
		t.auth.logAt(ctx, slog.LevelError, EventRefreshFailed, reqID, slog.String("error", err.Error()))
		t.endSession(ctx, err, reqID)
		return resp, nil
	}
	t.auth.log(ctx, EventRefreshSucceeded, reqID)
	drain(resp)

	retry, err := rewind(req)
	if err != nil {
		return nil, err
	}
	retry.Header.Set("Authorization", "Bearer "+access)

	resp, err = t.base.RoundTrip(retry)
	if err != nil {
		return nil, err
	}
	t.auth.log(ctx, EventRetryCompleted, reqID, slog.Int("status", resp.StatusCode))
	return resp, nil
}

// refresh runs the exchange and stores the result. In coalescing mode callers
// holding the same refresh token share one exchange.
func (t *Transport) refresh(ctx context.Context, refreshToken string) (string, error) {
	if !t.coalesce {
		return t.exchange(ctx, refreshToken)
	}
	ch := t.group.DoChan(refreshToken, func() (any, error) {
		return t.exchange(context.WithoutCancel(ctx), refreshToken)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (t *Transport) exchange(ctx context.Context, refreshToken string) (string, error) {
	tokens, err := t.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if tokens.Access == "" {
		return "", ErrMissingAccessToken
	}
	if err := t.store.Set(storage.AccessTokenKey, tokens.Access); err != nil {
		return "", fmt.Errorf("storing access token: %w", err)
	}
	if tokens.Refresh != "" && tokens.Refresh != refreshToken {
		if err := t.store.Set(storage.RefreshTokenKey, tokens.Refresh); err != nil {
			return "", fmt.Errorf("storing refresh token: %w", err)
		}
	}
	return tokens.Access, nil
}

// endSession clears every stored credential and sends the user to the login
// page.
func (t *Transport) endSession(ctx context.Context, cause error, attrs ...slog.Attr) {
	if err := t.store.Clear(); err != nil {
		t.auth.logger.Error("clearing session storage", "error", err)
	}
	attrs = append(attrs, slog.String("cause", cause.Error()))
	t.auth.log(ctx, EventSessionCleared, attrs...)
	t.navigator.Navigate(LoginPath)
}

// rewind returns a copy of req whose body can be sent again.
func rewind(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if req.GetBody == nil {
		return out, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewinding request body: %w", err)
	}
	out.Body = body
	return out, nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
