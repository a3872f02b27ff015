// Package httpstore implements store.Store against a remote mind-map API
// server (see package api).
//
// Transient failures (network errors, attempt timeouts and 5xx responses)
// are retried with exponential backoff; every other failure is returned at
// once. A timed-out attempt or an expired context deadline is TIMEOUT. Error
// responses are turned back into coded errors, so a missing document is
// NOT_FOUND on the client exactly as on the server.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/mindmap/pkg/api"
	"github.com/matzehuels/mindmap/pkg/document"
	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/httputil"
	"github.com/matzehuels/mindmap/pkg/observability"
)

// DefaultTimeout bounds a single request attempt.
const DefaultTimeout = 15 * time.Second

// Client is a store backed by an API server.
type Client struct {
	base     *url.URL
	http     *http.Client
	attempts int
	delay    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRetry sets the number of attempts per request and the initial
// backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts, c.delay = attempts, delay
	}
}

// New returns a client for the server at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid server URL")
	}
	c := &Client{
		base:     u,
		http:     &http.Client{Timeout: DefaultTimeout},
		attempts: httputil.DefaultAttempts,
		delay:    httputil.DefaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Load fetches a document.
func (c *Client) Load(ctx context.Context, id string) (*document.Document, error) {
	var doc document.Document
	if err := c.do(ctx, http.MethodGet, docPath(id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Save creates or replaces a document.
func (c *Client) Save(ctx context.Context, doc *document.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "encode document")
	}
	return c.do(ctx, http.MethodPut, docPath(doc.ID), body, nil)
}

// Delete removes a document.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, docPath(id), nil, nil)
}

// List returns document summaries, most recently updated first.
func (c *Client) List(ctx context.Context) ([]document.Summary, error) {
	var out []document.Summary
	if err := c.do(ctx, http.MethodGet, api.BasePath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func docPath(id string) string {
	return api.BasePath + "/" + url.PathEscape(id)
}

// do sends one logical request, retrying transient failures. When out is
// not nil the response body is decoded into it.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	target := c.base.JoinPath(path)
	return httputil.Retry(ctx, c.attempts, c.delay, func() error {
		var r io.Reader
		if body != nil {
			r = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target.String(), r)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "build request")
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		hooks := observability.HTTP()
		hooks.OnRequest(ctx, method, target.Host, path)
		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			hooks.OnError(ctx, method, target.Host, path, err)
			if ctxErr := ctx.Err(); ctxErr != nil {
				if stderrors.Is(ctxErr, context.DeadlineExceeded) {
					return errors.Wrap(errors.ErrCodeTimeout, ctxErr, "%s %s", method, path)
				}
				return ctxErr
			}
			var netErr net.Error
			if stderrors.As(err, &netErr) && netErr.Timeout() {
				return httputil.Retryable(errors.Wrap(errors.ErrCodeTimeout, err, "%s %s", method, path))
			}
			return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, path))
		}
		defer resp.Body.Close()
		hooks.OnResponse(ctx, method, target.Host, path, resp.StatusCode, time.Since(start))

		if resp.StatusCode >= 400 {
			err := responseError(resp)
			if resp.StatusCode >= 500 {
				return httputil.Retryable(err)
			}
			return err
		}
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s response", path)
		}
		return nil
	})
}

// responseError rebuilds the coded error from an error response.
func responseError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb api.ErrorBody
	if json.Unmarshal(data, &eb) == nil && eb.Error.Code != "" {
		return errors.New(eb.Error.Code, "%s", eb.Error.Message)
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		msg = resp.Status
	}
	code := errors.ErrCodeNetwork
	if resp.StatusCode == http.StatusNotFound {
		code = errors.ErrCodeNotFound
	}
	return errors.New(code, "server returned %d: %s", resp.StatusCode, msg)
}

// String returns the server URL.
func (c *Client) String() string {
	return fmt.Sprintf("httpstore(%s)", c.base)
}
