// Copyright 2025 The vmcp Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package compute is a client for the upstream compute REST API. It is a
// deliberately thin shim: every method performs exactly one HTTP round trip
// and returns the upstream JSON unmodified, or an *Error carrying the
// upstream status code. Nothing is cached, retried, or verified beyond the
// HTTP status of the single call.
package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
)

const (
	defaultBaseURL = "https://api.magalu.cloud/br-ne-1/compute/v1/"
	userAgent      = "vmcp/1.0"
	mediaTypeJSON  = "application/json"

	headerAPIKey   = "x-api-key"
	headerTenantID = "x-tenant-id"
)

// Client talks to the upstream compute API. It is safe for concurrent use:
// all fields are set at construction and never mutated.
type Client struct {
	client *http.Client

	// BaseURL for API requests. Must end in a trailing slash.
	BaseURL *url.URL

	apiKey    string
	tenantID  string
	userAgent string
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL sets the base URL for the client. The URL must be a valid
// HTTP or HTTPS URL; a trailing slash is added when missing.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if baseURL == "" {
			return fmt.Errorf("base URL cannot be empty")
		}

		parsed, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}

		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("base URL must use HTTP or HTTPS scheme, got: %s", parsed.Scheme)
		}

		// Trailing slash keeps relative URL resolution predictable.
		if !strings.HasSuffix(parsed.Path, "/") {
			parsed.Path += "/"
		}

		c.BaseURL = parsed
		return nil
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.client = httpClient
		return nil
	}
}

// WithTenantID sets a default tenant scope, forwarded as the x-tenant-id
// header on every request unless a call supplies its own tenant.
func WithTenantID(tenantID string) Option {
	return func(c *Client) error {
		c.tenantID = tenantID
		return nil
	}
}

// WithUserAgent overrides the User-Agent header value.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		if ua == "" {
			return fmt.Errorf("user agent cannot be empty")
		}
		c.userAgent = ua
		return nil
	}
}

// WithLogger sets the structured logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// NewClient returns a new compute API client. The API key is required;
// construction fails without it so a missing credential is caught at
// startup rather than on the first call.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	baseURL, err := url.Parse(defaultBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse default base URL: %w", err)
	}

	c := &Client{
		client:    http.DefaultClient,
		BaseURL:   baseURL,
		apiKey:    apiKey,
		userAgent: userAgent,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// newRequest creates an API request. urlStr is resolved relative to the
// client's BaseURL and must not start with a slash. If body is non-nil it
// is JSON encoded as the request body. The authentication header is always
// set; tenant, when non-empty, overrides the client default.
func (c *Client) newRequest(method, urlStr string, body any, tenant string) (*http.Request, error) {
	if !strings.HasSuffix(c.BaseURL.Path, "/") {
		return nil, fmt.Errorf("BaseURL must have a trailing slash, but %q does not", c.BaseURL)
	}

	u, err := c.BaseURL.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	var buf io.ReadWriter
	if body != nil {
		buf = &bytes.Buffer{}
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest(method, u.String(), buf)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", mediaTypeJSON)
	}
	req.Header.Set("Accept", mediaTypeJSON)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(headerAPIKey, c.apiKey)

	if tenant == "" {
		tenant = c.tenantID
	}
	if tenant != "" {
		req.Header.Set(headerTenantID, tenant)
	}

	return req, nil
}

// do sends an API request and decodes the JSON response into v. A 204 or
// otherwise empty body leaves v untouched and returns a nil error. A
// non-2xx status returns an *Error carrying the upstream status code.
//
// The provided ctx must be non-nil. If it is canceled or times out,
// ctx.Err() will be returned.
func (c *Client) do(ctx context.Context, req *http.Request, v any) error {
	if ctx == nil {
		return fmt.Errorf("context must be non-nil")
	}

	req = req.WithContext(ctx)

	resp, err := c.client.Do(req)
	if err != nil {
		// If the context has been canceled, its error is more useful
		// than the transport's.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		return err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}

	if v == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	decErr := json.NewDecoder(resp.Body).Decode(v)
	if decErr == io.EOF {
		decErr = nil // empty success body, nothing to decode
	}
	return decErr
}

// addOptions adds the parameters in opts as URL query parameters to s.
// opts must be a struct whose fields may contain "url" tags.
func addOptions(s string, opts any) (string, error) {
	v, err := query.Values(opts)
	if err != nil {
		return s, err
	}

	u, err := url.Parse(s)
	if err != nil {
		return s, err
	}

	if q := v.Encode(); q != "" {
		if u.RawQuery != "" {
			u.RawQuery = u.RawQuery + "&" + q
		} else {
			u.RawQuery = q
		}
	}

	return u.String(), nil
}
