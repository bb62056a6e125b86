// Package api is the HTTP client for the booking plugin's REST interface.
package api

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
	"time"

	"github.com/google/uuid"
)

// DefaultPathPrefix is where the plugin mounts its routes under a domain.
const DefaultPathPrefix = "/wp-json/valcode-appoint/v1"

const loginPath = "/auth/login"

// Config is the immutable addressing and credential state of a Client.
type Config struct {
	BaseURL string
	Token   string
}

// BaseURLForDomain joins a normalised domain and the API path prefix.
func BaseURLForDomain(domain, pathPrefix string) string {
	if pathPrefix == "" {
		pathPrefix = DefaultPathPrefix
	}
	return strings.TrimRight(domain, "/") + "/" + strings.TrimLeft(pathPrefix, "/")
}

// Client issues authenticated JSON requests. A Client is immutable; the
// With* methods return modified copies, so concurrent callers can hold
// independent configurations.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	requestID  func() string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestIDGenerator overrides the X-Request-ID generator.
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if gen != nil {
			c.requestID = gen
		}
	}
}

// NewClient builds a Client for cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
		requestID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the client's addressing state.
func (c *Client) Config() Config {
	return c.cfg
}

// WithConfig returns a copy of c using cfg.
func (c *Client) WithConfig(cfg Config) *Client {
	clone := *c
	clone.cfg = cfg
	return &clone
}

// WithBaseURL returns a copy of c pointed at baseURL.
func (c *Client) WithBaseURL(baseURL string) *Client {
	cfg := c.cfg
	cfg.BaseURL = baseURL
	return c.WithConfig(cfg)
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cfg := c.cfg
	cfg.Token = token
	return c.WithConfig(cfg)
}

type errorBody struct {
	Message string `json:"message"`
}

// Request sends method to BaseURL+path. body, when non-nil, is encoded as
// JSON. A 2xx response is decoded into out when out is non-nil and the body
// is not empty. Any other outcome is returned as *Error.
func (c *Client) Request(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c == nil {
		return fmt.Errorf("api client is nil")
	}
	if c.cfg.BaseURL == "" {
		return &Error{Kind: KindTransport, Method: method, Path: path, Message: "api: base URL is not configured"}
	}

	target := c.cfg.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &Error{Kind: KindTransport, Method: method, Path: path, Err: err}
	}

	requestID := c.requestID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.cfg.Token != "" && !strings.HasPrefix(path, loginPath) {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	logger := c.logger.With("method", method, "path", path, "request_id", requestID)
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := &Error{Kind: KindTransport, Method: method, Path: path, Err: err, Message: err.Error()}
		logger.Error("api request failed", "error", apiErr, "error_kind", apiErr.Kind)
		return apiErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := &Error{Kind: KindTransport, Status: resp.StatusCode, Method: method, Path: path, Err: err, Message: err.Error()}
		logger.Error("api request failed", "error", apiErr, "error_kind", apiErr.Kind)
		return apiErr
	}

	logger.Debug("api request completed", "status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		apiErr := &Error{
			Kind:    classifyStatus(resp.StatusCode, eb.Message),
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(eb.Message),
			Method:  method,
			Path:    path,
		}
		logger.Error("api request failed", "status", resp.StatusCode, "error", apiErr, "error_kind", apiErr.Kind)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		apiErr := &Error{Kind: KindDecode, Status: resp.StatusCode, Method: method, Path: path, Err: err, Message: "api: invalid response body"}
		logger.Error("api request failed", "error", err, "error_kind", apiErr.Kind)
		return apiErr
	}
	return nil
}
