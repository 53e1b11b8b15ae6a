package storage

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// HTTPStorage implements Storage for HTTP/HTTPS downloads
type HTTPStorage struct {
	client *http.Client
}

// HTTPOption configures an HTTPStorage
type HTTPOption func(*retryablehttp.Client)

// WithRetry sets the retry budget and backoff bounds
func WithRetry(max int, waitMin, waitMax time.Duration) HTTPOption {
	return func(c *retryablehttp.Client) {
		c.RetryMax = max
		c.RetryWaitMin = waitMin
		c.RetryWaitMax = waitMax
	}
}

// WithHTTPLogger routes retry diagnostics to logger
func WithHTTPLogger(logger zerolog.Logger) HTTPOption {
	return func(c *retryablehttp.Client) {
		c.Logger = retryLogger{logger: logger}
	}
}

// WithBlockedNetworks refuses connections to BlockedNetworks
func WithBlockedNetworks() HTTPOption {
	return func(c *retryablehttp.Client) {
		dialer := &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
			Control:   guardDial,
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DialContext = dialer.DialContext
		c.HTTPClient.Transport = transport
	}
}

// NewHTTPStorage creates a new HTTP storage backend
func NewHTTPStorage(opts ...HTTPOption) *HTTPStorage {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = nil // Silence default debug logger

	for _, opt := range opts {
		opt(retryClient)
	}

	return &HTTPStorage{
		client: retryClient.StandardClient(),
	}
}

// Get downloads a file over HTTP/HTTPS
func (hs *HTTPStorage) Get(ctx context.Context, uri string) (io.ReadCloser, error) {
	if _, _, err := requireScheme(uri, "HTTP", "http", "https"); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := hs.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP request failed with status %d", ErrNotFound, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP request failed with status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// Put is not supported for HTTP storage
func (hs *HTTPStorage) Put(ctx context.Context, uri string, data io.Reader) error {
	return fmt.Errorf("%w: Put operation not supported for HTTP storage", ErrReadOnly)
}

// Delete is not supported for HTTP storage
func (hs *HTTPStorage) Delete(ctx context.Context, uri string) error {
	return fmt.Errorf("%w: Delete operation not supported for HTTP storage", ErrReadOnly)
}

// Exists checks if a file exists by sending a HEAD request
func (hs *HTTPStorage) Exists(ctx context.Context, uri string) (bool, error) {
	if _, _, err := requireScheme(uri, "HTTP", "http", "https"); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, uri, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := hs.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

// retryLogger adapts zerolog to retryablehttp.LeveledLogger
type retryLogger struct {
	logger zerolog.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}
