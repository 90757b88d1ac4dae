package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"go.uber.org/zap"
)

// RequestOption modifies an outgoing request.
type RequestOption func(*http.Request)

// ClientOption modifies the HTTPClient.
type ClientOption func(*HTTPClient)

// HTTPError is returned for responses with a status of 400 or above.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Method     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d %s: %s", e.Method, e.URL, e.StatusCode, e.Status, e.Body)
}

// HTTPClient is a JSON HTTP client with retries on transport errors and
// retryable status codes.
type HTTPClient struct {
	httpClient     *http.Client
	baseURL        string
	defaultHeaders map[string]string
	retryConfig    *RetryConfig
	logger         *zap.Logger
}

// RetryConfig configures exponential backoff between attempts.
type RetryConfig struct {
	MaxRetries           int
	InitialInterval      time.Duration
	MaxInterval          time.Duration
	Multiplier           float64
	MaxElapsedTime       time.Duration
	RetryableStatusCodes []int
}

// DefaultRetryConfig retries gateway and throttling errors three times.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:           3,
		InitialInterval:      100 * time.Millisecond,
		MaxInterval:          5 * time.Second,
		Multiplier:           2.0,
		MaxElapsedTime:       20 * time.Second,
		RetryableStatusCodes: []int{408, 429, 500, 502, 503, 504},
	}
}

// NewHTTPClient creates an HTTPClient with the given options.
func NewHTTPClient(options ...ClientOption) *HTTPClient {
	client := &HTTPClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		defaultHeaders: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		retryConfig: DefaultRetryConfig(),
		logger:      logger.ForComponent(logger.ComponentBundler),
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// WithBaseURL sets the base URL for all requests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *HTTPClient) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithDefaultHeader adds a header to every request.
func WithDefaultHeader(key, value string) ClientOption {
	return func(c *HTTPClient) {
		c.defaultHeaders[key] = value
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetryConfig replaces the retry configuration. A nil config disables retries.
func WithRetryConfig(config *RetryConfig) ClientOption {
	return func(c *HTTPClient) {
		c.retryConfig = config
	}
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *HTTPClient) {
		c.httpClient.Transport = rt
	}
}

// WithHeader sets a header on a single request.
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// WithBearerToken adds bearer token authentication to the request.
func WithBearerToken(token string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// PostJSON posts body and decodes the JSON response into out.
func (c *HTTPClient) PostJSON(ctx context.Context, path string, body, out interface{}, options ...RequestOption) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, path, payload, options...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// do executes the request, retrying per retryConfig, and returns the
// response body. The request is rebuilt for every attempt so the body
// can be replayed.
func (c *HTTPClient) do(ctx context.Context, method, path string, payload []byte, options ...RequestOption) ([]byte, error) {
	fullURL := c.baseURL + path
	if c.baseURL != "" && path != "" && !strings.HasPrefix(path, "/") {
		fullURL = c.baseURL + "/" + path
	}
	start := time.Now()

	var (
		status int
		body   []byte
	)
	attempt := func() error {
		status, body = 0, nil
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		for key, value := range c.defaultHeaders {
			req.Header.Set(key, value)
		}
		for _, option := range options {
			option(req)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if c.retryable(status) {
			return fmt.Errorf("retryable status code: %d", status)
		}
		return nil
	}

	var err error
	if c.retryConfig != nil && c.retryConfig.MaxRetries > 0 {
		expBackoff := backoff.NewExponentialBackOff()
		expBackoff.InitialInterval = c.retryConfig.InitialInterval
		expBackoff.MaxInterval = c.retryConfig.MaxInterval
		expBackoff.Multiplier = c.retryConfig.Multiplier
		expBackoff.MaxElapsedTime = c.retryConfig.MaxElapsedTime

		err = backoff.Retry(attempt, backoff.WithContext(
			backoff.WithMaxRetries(expBackoff, uint64(c.retryConfig.MaxRetries)), ctx))
	} else {
		err = attempt()
	}

	duration := time.Since(start)
	if err != nil && status == 0 {
		c.logger.Error("HTTP request failed",
			zap.String("method", method),
			zap.String("url", fullURL),
			zap.Error(err),
			zap.Duration("duration", duration))
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	if status >= 400 {
		c.logger.Warn("HTTP error response",
			zap.String("method", method),
			zap.String("url", fullURL),
			zap.Int("status", status),
			zap.Duration("duration", duration))
		return nil, &HTTPError{
			StatusCode: status,
			Status:     http.StatusText(status),
			URL:        fullURL,
			Method:     method,
			Body:       string(body),
		}
	}

	c.logger.Debug("HTTP request successful",
		zap.String("method", method),
		zap.String("url", fullURL),
		zap.Int("status", status),
		zap.Duration("duration", duration))
	return body, nil
}

func (c *HTTPClient) retryable(status int) bool {
	if c.retryConfig == nil {
		return false
	}
	for _, code := range c.retryConfig.RetryableStatusCodes {
		if status == code {
			return true
		}
	}
	return false
}

// GetBaseURL returns the configured base URL.
func (c *HTTPClient) GetBaseURL() string {
	return c.baseURL
}
