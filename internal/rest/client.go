// Package rest provides the HTTP client used by all backend API modules:
// cookie-based credentials, JSON encode/decode, a typed error taxonomy, and
// a single transparent re-authentication retry on 401 with coalesced token
// refresh.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

// refreshPath is the token-refresh endpoint. A 401 from any non-auth
// endpoint triggers one call here before the original request is retried.
const refreshPath = "/auth/refresh"

// refreshRound tracks one in-flight token refresh. Concurrent 401s share a
// single round: the first caller performs the request, the rest wait on done
// and read the same err.
type refreshRound struct {
	done chan struct{}
	err  error
}

// Client issues authenticated JSON requests against the backend. The zero
// value is not usable; construct with NewClient.
type Client struct {
	baseURL string
	hc      *http.Client
	log     *slog.Logger

	// OnSessionExpired is invoked when a 401 cannot be recovered by token
	// refresh (the client-side equivalent of a redirect to the login view).
	// May be nil.
	OnSessionExpired func()

	mu      sync.Mutex
	refresh *refreshRound
}

// NewClient creates a Client for the given base URL (e.g.
// "https://host/api/v1"). Cookies issued by the backend are retained for the
// lifetime of the client.
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	jar, _ := cookiejar.New(nil)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		hc: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		log: log,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// HTTPClient exposes the underlying http.Client (shared cookie jar) for
// auxiliary transports such as the WebSocket stream.
func (c *Client) HTTPClient() *http.Client { return c.hc }

// Get issues a GET request. Empty values in query are skipped.
func (c *Client) Get(ctx context.Context, path string, query map[string]string, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out, false)
}

// Post issues a POST request with a JSON body (body may be nil).
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, "", out, false)
}

// PostForm issues a POST request with a form-encoded body (used by login).
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, form.Encode(), "application/x-www-form-urlencoded", out, false)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, "", out, false)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, "", out, false)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, "", out, false)
}

// do executes one request. retried marks a re-issue after token refresh so a
// second 401 is returned as-is, bounding the policy to exactly one retry per
// logical call.
func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body any, contentType string, out any, retried bool) error {
	u := c.baseURL + path
	if len(query) > 0 {
		values := url.Values{}
		for k, v := range query {
			if v == "" {
				continue
			}
			values.Set(k, v)
		}
		if encoded := values.Encode(); encoded != "" {
			u += "?" + encoded
		}
	}

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
		if contentType == "" {
			contentType = "application/json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		// No response at all: taxonomy class (a), status 0.
		return &APIError{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && !retried && !isAuthPath(path) {
		io.Copy(io.Discard, resp.Body)
		if refreshErr := c.refreshSession(ctx); refreshErr != nil {
			c.log.Warn("token refresh failed, session expired", "path", path, "error", refreshErr)
			if c.OnSessionExpired != nil {
				c.OnSessionExpired()
			}
			return &APIError{Status: http.StatusUnauthorized, Message: "session expired"}
		}
		c.log.Debug("retrying request after token refresh", "method", method, "path", path)
		return c.do(ctx, method, path, query, body, contentType, out, true)
	}

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		// Non-JSON success (e.g. 204 or text ack): nothing to decode.
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("decoding response: %v", err)}
	}
	return nil
}

// refreshSession performs one POST /auth/refresh, coalescing concurrent
// callers onto a single in-flight round.
func (c *Client) refreshSession(ctx context.Context) error {
	c.mu.Lock()
	if r := c.refresh; r != nil {
		c.mu.Unlock()
		select {
		case <-r.done:
			return r.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r := &refreshRound{done: make(chan struct{})}
	c.refresh = r
	c.mu.Unlock()

	r.err = c.do(ctx, http.MethodPost, refreshPath, nil, nil, "", nil, true)

	c.mu.Lock()
	c.refresh = nil
	c.mu.Unlock()
	close(r.done)
	return r.err
}

// isAuthPath reports whether the path belongs to the auth endpoint group.
// 401s from these endpoints mean bad credentials, not an expired session, so
// no refresh is attempted for them.
func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/auth/")
}

// errorBody covers the message field spellings used across backend error
// responses.
type errorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Error   string `json:"error"`
}

// parseErrorResponse builds an *APIError from a non-2xx response, falling
// back to the HTTP status text when the body is not parseable JSON.
func parseErrorResponse(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil {
		switch {
		case eb.Message != "":
			apiErr.Message = eb.Message
		case eb.Detail != "":
			apiErr.Message = eb.Detail
		case eb.Error != "":
			apiErr.Message = eb.Error
		}
		apiErr.Detail = eb.Detail
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
