package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sipeed/hookchat/pkg/logger"
)

// Request is the JSON body posted to the webhook.
type Request struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// StatusError is returned when the webhook answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook returned %d: %s - %s", e.Code, e.Status, e.Body)
}

// TransportError wraps failures that happen before any response arrives
// (name resolution, refused connections, aborted requests).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client posts chat turns to a single, statically configured webhook.
type Client struct {
	url        string
	headers    map[string]string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client (no timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHeaders adds static headers to every call.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) {
		for k, v := range h {
			c.headers[k] = v
		}
	}
}

func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		headers:    make(map[string]string),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) URL() string {
	return c.url
}

// Send posts one turn and returns the raw response body. Non-2xx answers
// come back as *StatusError, transport failures as *TransportError.
func (c *Client) Send(ctx context.Context, message, sessionID string) (string, error) {
	b, err := json.Marshal(Request{Message: message, SessionID: sessionID})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("build webhook request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	logger.DebugCF("webhook", "Sending to webhook", map[string]interface{}{
		"url":        c.url,
		"request_id": requestID,
		"session_id": sessionID,
		"message":    logger.Preview(message, 100),
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.ErrorCF("webhook", "Webhook request failed", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("read webhook response: %w", err)}
	}

	logger.DebugCF("webhook", "Webhook responded", map[string]interface{}{
		"request_id": requestID,
		"status":     resp.StatusCode,
		"bytes":      len(body),
		"elapsed":    time.Since(start).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.WarnCF("webhook", "Webhook returned error status", map[string]interface{}{
			"request_id": requestID,
			"status":     resp.StatusCode,
			"body":       logger.Preview(string(body), 200),
		})
		return "", &StatusError{
			Code:   resp.StatusCode,
			Status: http.StatusText(resp.StatusCode),
			Body:   string(body),
		}
	}

	return string(body), nil
}
