// Package gateway is the single outbound channel to the leave-management REST backend.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/internal"
)

const (
	DefaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// TokenSource supplies the bearer credential and forgets it when the backend rejects it.
type TokenSource interface {
	Token() string
	Clear() error
}

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	Environment string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Timeout is overridden by Config.Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithAuthBoundary registers the callback run after an expired session has been cleared.
func WithAuthBoundary(fn func(ctx context.Context)) Option {
	return func(c *Client) {
		c.onAuthExpired = fn
	}
}

type Client struct {
	baseURL       string
	httpClient    *http.Client
	tokens        TokenSource
	onAuthExpired func(ctx context.Context)
	logger        *slog.Logger
	production    bool
}

func NewClient(cfg Config, tokens TokenSource, logger *slog.Logger, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{},
		tokens:     tokens,
		logger:     logger.With("adapter", "gateway"),
		production: cfg.Environment == internal.EnvProduction,
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.httpClient
	hc.Timeout = timeout
	c.httpClient = &hc

	return c
}

func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Do sends one request and decodes a 2xx JSON body into out. Every failure is returned
// as an *internal.AppError.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}

	req, err := c.newRequest(ctx, method, path, body, token)
	if err != nil {
		return internal.NewInternalError("failed to build request", err)
	}

	c.logger.DebugContext(ctx, "sending request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(ctx, method, path, internal.NewNetworkError(c.transportMessage(err), err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return c.fail(ctx, method, path, internal.NewNetworkError(c.transportMessage(err), err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		appErr := normalize(resp.StatusCode, raw)
		// A 401 ends the session only when a token was sent; a failed login keeps its own error.
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			c.expireSession(ctx)
			appErr.Code = internal.ErrCodeSessionExpired
		}
		return c.fail(ctx, method, path, appErr)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return c.fail(ctx, method, path, internal.NewServerError("invalid response body", resp.StatusCode).WithCause(err))
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}, token string) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("gateway: marshal body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("gateway: create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) expireSession(ctx context.Context) {
	if err := c.tokens.Clear(); err != nil {
		c.logger.ErrorContext(ctx, "failed to clear expired session", "error", err)
	}
	if c.onAuthExpired != nil {
		c.onAuthExpired(ctx)
	}
}

func (c *Client) fail(ctx context.Context, method, path string, appErr *internal.AppError) error {
	if !c.production {
		c.logger.ErrorContext(ctx, "api error",
			"method", method,
			"path", path,
			"status", appErr.StatusCode,
			"type", appErr.Type,
			"code", appErr.Code,
			"message", appErr.Message)
	}
	return appErr
}

func (c *Client) transportMessage(err error) string {
	if errors.Is(err, context.Canceled) {
		return "request canceled"
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Sprintf("timeout of %dms exceeded", c.httpClient.Timeout.Milliseconds())
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return internal.UnknownErrorMessage
}

type errorBody struct {
	Type    internal.ErrorType `json:"type"`
	Code    internal.ErrorCode `json:"code"`
	Message string             `json:"message"`
}

type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// normalize turns a non-2xx response into an AppError, preferring the server's own message and code.
func normalize(status int, raw []byte) *internal.AppError {
	var (
		message string
		code    internal.ErrorCode
	)

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil {
		var body errorBody
		var text string
		switch {
		case len(env.Error) > 0 && json.Unmarshal(env.Error, &body) == nil:
			message, code = body.Message, body.Code
		case len(env.Error) > 0 && json.Unmarshal(env.Error, &text) == nil:
			message = text
		}
		if message == "" {
			message = env.Message
		}
	}
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = internal.UnknownErrorMessage
	}

	var appErr *internal.AppError
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		appErr = internal.NewValidationError(message, internal.ErrCodeValidationFailed)
	case http.StatusUnauthorized:
		appErr = internal.NewUnauthorizedError(message, internal.ErrCodeInvalidCredentials)
	case http.StatusForbidden:
		appErr = internal.NewForbiddenError(message, internal.ErrCodeInsufficientRole)
	case http.StatusNotFound:
		appErr = internal.NewNotFoundError(message, internal.ErrCodeNotFound)
	case http.StatusConflict:
		appErr = internal.NewConflictError(message, internal.ErrCodeConflict)
	default:
		appErr = internal.NewServerError(message, status)
	}
	appErr.StatusCode = status
	if code != "" {
		appErr.Code = code
	}
	return appErr
}
