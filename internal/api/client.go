// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the parish bingo REST backend.
//
// The client carries the bearer credential for every request, keeps the
// backend's cookies in a jar, maps error responses to user-facing messages
// and reports 401 responses from non-auth endpoints through a hook so the
// session can be torn down.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Configuration constants.
const (
	// DefaultBaseURL is the development backend.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second

	// DefaultRequestsPerSecond is the outbound request budget.
	DefaultRequestsPerSecond = 10

	// MaxResponseSize limits how much of a response body is read.
	MaxResponseSize = 1 << 20
)

// DefaultSessionCookies are expired on logout even when the jar does not
// list them.
var DefaultSessionCookies = []string{"session", "refresh_token", "csrftoken"}

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	jar        http.CookieJar
	limiter    *rate.Limiter

	mu             sync.RWMutex
	token          string
	cookieNames    []string
	onUnauthorized func(path string)
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidBaseURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidBaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		base: u,
		jar:  jar,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		limiter:     rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultRequestsPerSecond),
		cookieNames: append([]string(nil), DefaultSessionCookies...),
	}, nil
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

// WithRateLimit sets the outbound request budget. A non-positive rps
// disables limiting.
func (c *Client) WithRateLimit(rps float64, burst int) *Client {
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
		return c
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// WithSessionCookies replaces the cookie allow-list expired by ClearCookies.
func (c *Client) WithSessionCookies(names []string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cookieNames = append([]string(nil), names...)
	return c
}

// OnUnauthorized registers the hook called when a non-auth endpoint answers
// 401. The hook receives the request path.
func (c *Client) OnUnauthorized(fn func(path string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// =============================================================================
// CREDENTIALS
// =============================================================================

// SetToken makes every following request carry token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken strips the bearer credential.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the current bearer credential.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ClearCookies expires every cookie the jar holds for the backend plus every
// allow-listed session cookie name.
func (c *Client) ClearCookies() error {
	c.mu.RLock()
	names := append([]string(nil), c.cookieNames...)
	c.mu.RUnlock()

	seen := make(map[string]bool)
	for _, ck := range c.jar.Cookies(c.base) {
		seen[ck.Name] = true
	}
	for _, n := range names {
		seen[n] = true
	}

	expired := make([]*http.Cookie, 0, len(seen))
	for name := range seen {
		expired = append(expired, &http.Cookie{
			Name:    name,
			Value:   "",
			Path:    "/",
			MaxAge:  -1,
			Expires: time.Unix(0, 0),
		})
	}
	c.jar.SetCookies(c.base, expired)
	return nil
}

// Cookies returns the cookies currently sent to the backend.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.base)
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Message: msgConnection, Method: method, Path: path, Err: errors.Join(ErrNetwork, err)}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("API_ERROR | %s %s network error=%v", method, path, err)
		return &Error{Message: msgConnection, Method: method, Path: path, Err: errors.Join(ErrNetwork, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: msgConnection, Method: method, Path: path, Err: errors.Join(ErrNetwork, err)}
	}

	if resp.StatusCode >= 400 {
		apiErr := &Error{
			Status:  resp.StatusCode,
			Message: decodeError(resp.StatusCode, data),
			Method:  method,
			Path:    path,
		}
		log.Printf("API_ERROR | %s %s status=%d message=%q", method, path, resp.StatusCode, apiErr.Message)
		if resp.StatusCode == http.StatusUnauthorized && !isAuthEndpoint(path) {
			c.mu.RLock()
			hook := c.onUnauthorized
			c.mu.RUnlock()
			if hook != nil {
				hook(path)
			}
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func isAuthEndpoint(path string) bool {
	return strings.Contains(path, "/auth/")
}

// =============================================================================
// ENDPOINTS
// =============================================================================

// Login authenticates a member by CPF or email.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminSiteLogin authenticates a top-level administrator.
func (c *Client) AdminSiteLogin(ctx context.Context, req AdminSiteLoginRequest) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/admin-site/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminParoquiaLogin authenticates parish staff.
func (c *Client) AdminParoquiaLogin(ctx context.Context, req AdminParoquiaLoginRequest) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/admin-paroquia/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Bootstrap creates the first top-level administrator.
func (c *Client) Bootstrap(ctx context.Context, req BootstrapRequest) (*BootstrapResponse, error) {
	var out BootstrapResponse
	if err := c.do(ctx, http.MethodPost, "/auth/bootstrap", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BootstrapLogin signs in with the temporary bootstrap account.
func (c *Client) BootstrapLogin(ctx context.Context, req BootstrapLoginRequest) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/bootstrap/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FirstAccess reports whether the installation still needs first-run setup.
func (c *Client) FirstAccess(ctx context.Context) (*FirstAccessResponse, error) {
	var out FirstAccessResponse
	if err := c.do(ctx, http.MethodGet, "/auth/first-access", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProfile fetches a user's profile.
func (c *Client) GetProfile(ctx context.Context, id string) (*UserRecord, error) {
	var out UserRecord
	if err := c.do(ctx, http.MethodGet, "/auth/profile/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile updates a user's profile and returns the stored record.
func (c *Client) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*UserRecord, error) {
	var out UserRecord
	if err := c.do(ctx, http.MethodPut, "/auth/profile/"+url.PathEscape(id), upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Settings fetches the backend-managed settings as key/value pairs.
func (c *Client) Settings(ctx context.Context) (map[string]string, error) {
	var list []Setting
	if err := c.do(ctx, http.MethodGet, "/configuracoes", nil, &list); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(list))
	for _, s := range list {
		out[s.Chave] = s.Valor
	}
	return out, nil
}

// Ping checks that the backend answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil)
}
