// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the REST client for the veta backend.
//
// One Client instance is shared by the whole application. It owns the base
// URL, the pooled HTTP client, the bearer-token source, and a client-side
// rate limiter so polling loops cannot hammer the backend.
//
// Error handling: HTTP error bodies carry a JSON "detail" field which is
// surfaced through APIError; 401/403/404/429 additionally match the
// sentinel errors below via errors.Is. Requests are never retried
// automatically; the caller decides whether to re-invoke.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion attacks.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	userAgent = "veta/1.0"
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Shared HTTP client with connection pooling for all backend requests.
// SECURITY: TLS verification required; TLS 1.2 minimum.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: false,
		},
	},
	Timeout: DefaultTimeout,
}

// Error variables for common backend errors.
var (
	// ErrAuthFailed indicates the token is missing, invalid, or expired (401).
	// Callers clear the session and return to login on this error.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrForbidden indicates the user lacks permission (403).
	ErrForbidden = errors.New("permission denied")

	// ErrNotFound indicates the resource does not exist (404).
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates too many requests were made (429).
	ErrRateLimited = errors.New("rate limited")
)

// APIError represents an error response from the backend. Detail carries
// the backend's "detail" message when one was present.
type APIError struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// Unwrap maps HTTP status codes onto sentinel errors for errors.Is checks.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrAuthFailed
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return nil
	}
}

// TokenSource supplies the current bearer token. The session manager
// implements it; tests use a literal.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource for a fixed token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token() (string, error) { return string(s), nil }

// Client is the veta backend REST client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
}

// New creates a client for the backend at baseURL. The token source may be
// nil for login-only use; authenticated calls then fail with ErrAuthFailed.
func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: sharedHTTPClient,
		tokens:     tokens,
		// Poll loops plus interactive use stay well under this; the burst
		// absorbs the bootstrap fan-out.
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
}

// WithTimeout sets the request timeout, replacing the shared client with a
// derived one so other consumers keep their own timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	derived := *sharedHTTPClient
	derived.Timeout = timeout
	c.httpClient = &derived
	return c
}

// WithRateLimit sets the client-side request rate cap.
func (c *Client) WithRateLimit(perSec float64, burst int) *Client {
	c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// SECURE LOGGING
// =============================================================================

// logRequest logs an API request without exposing sensitive data.
// SECURITY: Never log headers (auth token) or bodies (user content).
func logRequest(req *http.Request) {
	log.Printf("API Request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs status and duration only, no response body.
func logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API Response: %d %s (%v)", resp.StatusCode, resp.Status, duration)
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// readResponse reads the response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion attacks.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Detail string `json:"detail"`
}

// errorFromResponse converts a non-2xx response into an APIError.
func errorFromResponse(statusCode int, body []byte) error {
	apiErr := &APIError{Status: statusCode}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Detail != "" {
		apiErr.Detail = eb.Detail
	} else if len(body) > 0 {
		apiErr.Detail = strings.TrimSpace(string(body))
	}
	return apiErr
}

// authorize attaches the bearer token, or fails when none is held.
func (c *Client) authorize(req *http.Request) error {
	if c.tokens == nil {
		return ErrAuthFailed
	}
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// newJSONRequest builds a request with an optional JSON body.
func (c *Client) newJSONRequest(ctx context.Context, method, path string, reqBody any) (*http.Request, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// doJSON performs an authenticated JSON request. reqBody may be nil for
// bodyless methods; out may be nil when the response is discarded.
// No retry on failure: a send either lands once or fails once.
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, out any) error {
	req, err := c.newJSONRequest(ctx, method, path, reqBody)
	if err != nil {
		return err
	}
	if err := c.authorize(req); err != nil {
		return err
	}
	return c.execute(ctx, req, out)
}

// doPublicJSON is doJSON without the bearer token, for the endpoints that
// exist before a session does (registration, password reset). No token is
// attached even when one is held.
func (c *Client) doPublicJSON(ctx context.Context, method, path string, reqBody, out any) error {
	req, err := c.newJSONRequest(ctx, method, path, reqBody)
	if err != nil {
		return err
	}
	return c.execute(ctx, req, out)
}

// doForm performs an unauthenticated form-encoded POST (the login flow).
func (c *Client) doForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.execute(ctx, req, out)
}

// doMultipart performs an authenticated multipart upload of a single file
// field. The full body is buffered; uploads are size-capped well before
// this path by the document validator.
func (c *Client) doMultipart(ctx context.Context, path, fieldName, filename string, content io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(fieldName, filename)
	if err != nil {
		return fmt.Errorf("failed to create multipart field: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := c.authorize(req); err != nil {
		return err
	}
	return c.execute(ctx, req, out)
}

// execute runs a prepared request through the limiter and decodes the
// response into out.
func (c *Client) execute(ctx context.Context, req *http.Request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req.Header.Set("User-Agent", userAgent)
	logRequest(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)

	// SECURITY: Clear Authorization header immediately after the request
	// so a logged or leaked request object never carries the token.
	req.Header.Del("Authorization")

	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	logResponse(resp, time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp.StatusCode, body)
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
