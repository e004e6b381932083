// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the HTTP client for the remote content API.
// All content persistence is owned by the remote service; this client
// scopes every request to a tenant via the OrgCode query parameter and
// treats any non-2xx response as failure.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client configuration constants
const (
	RequestTimeout = 30 * time.Second // HTTP request timeout ceiling
	MaxResponseLen = 1 << 20          // Maximum response body to read (1MB)
	orgCodeParam   = "OrgCode"
)

// Client is the remote content API client. The zero value is not usable;
// construct with New. Client is safe for concurrent use; ForOrg returns a
// tenant-scoped shallow copy.
type Client struct {
	baseURL   string
	token     string
	orgCode   int64
	userAgent string
	http      *http.Client
}

// Options configures a Client.
type Options struct {
	// BaseURL is the remote API root, e.g. https://api.example.com.
	BaseURL string

	// Token, when set, is attached as a bearer token. The content-management
	// endpoints rely on OrgCode scoping alone; the internal endpoint family
	// requires the token.
	Token string

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// HTTPClient overrides the default HTTP client (used by tests).
	HTTPClient *http.Client
}

// New creates a Client for the given remote API.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout: RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "orgdesk/dev"
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		token:     opts.Token,
		userAgent: ua,
		http:      hc,
	}
}

// ForOrg returns a copy of the client scoped to one tenant. Every request
// issued through the copy carries OrgCode as a query parameter.
func (c *Client) ForOrg(orgCode int64) *Client {
	scoped := *c
	scoped.orgCode = orgCode
	return &scoped
}

// OrgCode returns the tenant scope of this client, 0 if unscoped.
func (c *Client) OrgCode() int64 {
	return c.orgCode
}

// BaseURL returns the remote API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// buildURL joins path onto the base URL and appends query parameters,
// including the tenant scope when set.
func (c *Client) buildURL(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	if c.orgCode != 0 {
		query.Set(orgCodeParam, strconv.FormatInt(c.orgCode, 10))
	}
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// do issues the request and maps any non-2xx status to a *StatusError.
// The response body (bounded by MaxResponseLen) is returned on success.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))

	// A status error wins; whatever body made it through is its context.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	if readErr != nil {
		return nil, fmt.Errorf("reading response from %s: %w", path, readErr)
	}
	return data, nil
}

// GetJSON issues a GET and decodes the JSON response into v.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, v any) error {
	data, err := c.do(ctx, http.MethodGet, path, query, "", nil)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}

// Submit sends an encoded request body (multipart or JSON) with the given
// method. Used by the entity editor for create (POST) and update (PUT).
func (c *Client) Submit(ctx context.Context, method, path, contentType string, body io.Reader) error {
	_, err := c.do(ctx, method, path, nil, contentType, body)
	return err
}

// Delete issues a DELETE for the given resource path.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, "", nil)
	return err
}

// MediaURL resolves a stored media path to an absolute URL. Paths beginning
// with "/" join the host directly; bare paths resolve under /uploads/.
func (c *Client) MediaURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + "/uploads/" + path
}
