// Package client wraps outgoing calls to the backend REST API: base URL
// resolution, bearer token attachment, envelope decoding and error mapping.
package client

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

	"go.uber.org/zap"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/metrics"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/middleware/requestid"
)

// TokenSource yields the bearer credential for the current session.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     TokenSource
	Logger     *zap.Logger
	Metrics    *metrics.Recorder
	// OnUnauthorized runs after any 401 so the session can force re-login.
	OnUnauthorized func(ctx context.Context)
}

// Client talks to `{origin}/api/v1`.
type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	logger         *zap.Logger
	metrics        *metrics.Recorder
	onUnauthorized func(ctx context.Context)
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	// Anonymous skips the Authorization header (POST /auth/login).
	Anonymous bool
}

// Response is a decoded success envelope.
type Response struct {
	Status     int
	Data       json.RawMessage
	Message    string
	Pagination *models.Pagination
	RequestID  string
}

type envelope struct {
	Data       json.RawMessage    `json:"data"`
	Message    string             `json:"message"`
	Error      string             `json:"error"`
	Pagination *models.Pagination `json:"pagination"`
	Total      *int               `json:"total"`
}

// New builds a client from options.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		http:           httpClient,
		tokens:         tokens,
		logger:         logger,
		metrics:        opts.Metrics,
		onUnauthorized: opts.OnUnauthorized,
	}
}

// BaseURL returns the resolved API base.
func (c *Client) BaseURL() string { return c.baseURL }

// Do performs the request and decodes the envelope. Non-2xx statuses and
// transport failures are returned as *appErrors.Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	target := c.resolve(req.Path, req.Query)
	resource := resourceLabel(req.Path)

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, appErrors.Local("request payload could not be encoded", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, appErrors.Transport(err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	reqID := requestid.New()
	httpReq.Header.Set(requestid.Header, reqID)
	if !req.Anonymous {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(method, resource, 0, latency)
		c.logger.Warn("api request failed",
			zap.String("method", method),
			zap.String("path", req.Path),
			zap.String("request_id", reqID),
			zap.Error(err))
		return nil, appErrors.Transport(err)
	}
	defer resp.Body.Close()

	c.metrics.ObserveRequest(method, resource, resp.StatusCode, latency)
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", latency),
		zap.String("request_id", reqID))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.Transport(fmt.Errorf("read response: %w", err))
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < http.StatusBadRequest {
			return nil, appErrors.Wrap(err, appErrors.KindServerError, resp.StatusCode, "unexpected response from server")
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := env.Message
		if message == "" {
			message = env.Error
		}
		apiErr := appErrors.FromResponse(resp.StatusCode, message)
		if apiErr.Code == appErrors.KindUnauthorized && c.onUnauthorized != nil && !req.Anonymous {
			c.onUnauthorized(ctx)
		}
		c.logger.Warn("api request rejected",
			zap.String("method", method),
			zap.String("path", req.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message),
			zap.String("request_id", reqID))
		return nil, apiErr
	}

	pagination := env.Pagination
	if pagination == nil && env.Total != nil {
		pagination = &models.Pagination{Total: *env.Total}
	}

	return &Response{
		Status:     resp.StatusCode,
		Data:       env.Data,
		Message:    env.Message,
		Pagination: pagination,
		RequestID:  reqID,
	}, nil
}

// Get issues a GET and decodes data into out when out is non-nil.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) (*Response, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return nil, err
	}
	if err := resp.Decode(out); err != nil {
		return nil, err
	}
	return resp, nil
}

// Decode unmarshals the envelope data into out. A nil out is a no-op.
func (r *Response) Decode(out interface{}) error {
	if out == nil || r == nil || len(r.Data) == 0 || string(r.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return appErrors.Wrap(err, appErrors.KindServerError, r.Status, "unexpected response from server")
	}
	return nil
}

func (c *Client) resolve(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return target
}

func resourceLabel(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "root"
	}
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// IsUnauthorized reports whether err forces re-authentication.
func IsUnauthorized(err error) bool {
	return errors.Is(err, appErrors.ErrUnauthorized)
}
