package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is where the SkillBridge backend listens in development
const DefaultBaseURL = "http://localhost:8080/api/v1"

// Cookie names issued by the backend
const (
	AccessCookie  = "SB_ACCESS"
	RefreshCookie = "SB_REFRESH"
)

// Client represents an HTTP client for the SkillBridge API
type Client struct {
	baseURL        string
	httpClient     *http.Client
	credentials    CredentialStore
	onUnauthorized func(ctx context.Context)
	logger         zerolog.Logger
}

// validate is shared by all clients; it caches struct metadata and is safe
// for concurrent use
var validate = validator.New()

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithCredentials sets where session cookies are kept between requests
func WithCredentials(store CredentialStore) Option {
	return func(c *Client) { c.credentials = store }
}

// WithUnauthorizedHandler is called when a data endpoint answers 401
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithLogger sets the client logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger.With().Str("component", "api_client").Logger() }
}

// New creates a new API client
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		credentials: NewMemoryCredentials(),
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetUnauthorizedHandler sets the 401 hook after construction, for callers
// whose handler needs the client to exist first
func (c *Client) SetUnauthorizedHandler(fn func(ctx context.Context)) {
	c.onUnauthorized = fn
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Credentials returns the credential store in use
func (c *Client) Credentials() CredentialStore {
	return c.credentials
}

// request describes one API call
type request struct {
	method string
	path   string
	query  url.Values
	body   any
}

// do sends the request and decodes a JSON response into out (if non-nil)
func (c *Client) do(ctx context.Context, r request, out any) error {
	var payload io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	tokens, err := c.credentials.LoadTokens(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to load session credentials")
	}
	tokens.apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if updated, changed := tokens.merge(resp.Cookies()); changed {
		if err := c.credentials.SaveTokens(ctx, updated); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to save session credentials")
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, body)
		c.logger.Debug().
			Err(apiErr).
			Str("method", r.method).
			Str("path", r.path).
			Int("status", resp.StatusCode).
			Msg("API request failed")
		if resp.StatusCode == http.StatusUnauthorized && !strings.HasPrefix(r.path, "/auth/") && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, request{method: http.MethodPost, path: path, body: body}, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, request{method: http.MethodPut, path: path, body: body}, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: path}, nil)
}

// validateInput runs struct validation before anything is sent. Payloads
// that are not structs (maps, raw JSON) pass through unchecked.
func (c *Client) validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return nil
	}
	return fmt.Errorf("invalid request: %w", err)
}

// pageQuery builds the page/size query used by list endpoints
func pageQuery(page, size int) url.Values {
	if size <= 0 {
		size = 10
	}
	if page < 0 {
		page = 0
	}
	return url.Values{
		"page": []string{fmt.Sprint(page)},
		"size": []string{fmt.Sprint(size)},
	}
}

// pathf escapes each argument as a path segment
func pathf(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}
