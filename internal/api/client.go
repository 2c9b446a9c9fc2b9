package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"recap/internal/model"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:5000"

// RequestIDHeader carries a per-call id so client and server logs line up.
const RequestIDHeader = "X-Request-ID"

// NetworkError reports a round trip that produced no usable envelope: the
// service was unreachable or answered with something that is not JSON.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// Client performs single round trips against the summarizer service.
// It makes exactly one attempt per call and never retries.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// BaseURL returns the service root requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// Call sends req and decodes the JSON envelope. Any HTTP status with a JSON
// body is returned to the caller, which inspects Success. Transport and
// decode failures come back as *NetworkError.
func (c *Client) Call(ctx context.Context, req Request) (model.Envelope, error) {
	reqID := uuid.NewString()
	logger := c.logger.With("request_id", reqID, "path", req.Path)

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, bytes.NewReader(req.Body))
	if err != nil {
		return model.Envelope{}, &NetworkError{Op: req.Path, Err: err}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	logger.Debug("request started", "bytes", len(req.Body))
	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.Warn("request failed", "error", err, "elapsed", time.Since(start))
		return model.Envelope{}, &NetworkError{Op: req.Path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("response read failed", "status", resp.StatusCode, "error", err)
		return model.Envelope{}, &NetworkError{Op: req.Path, Err: fmt.Errorf("read response: %w", err)}
	}
	env, err := decodeEnvelope(body)
	if err != nil {
		logger.Warn("response not decodable", "status", resp.StatusCode, "error", err)
		return model.Envelope{}, &NetworkError{
			Op:  req.Path,
			Err: fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err),
		}
	}
	logger.Info("request complete", "status", resp.StatusCode, "success", env.Success, "elapsed", time.Since(start))
	return env, nil
}

// decodeEnvelope accepts exactly one JSON object. null, arrays and trailing
// data after the object are rejected.
func decodeEnvelope(body []byte) (model.Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return model.Envelope{}, errors.New("response body is not a JSON object")
	}
	var env model.Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return model.Envelope{}, err
	}
	return env, nil
}
