package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/beautyops/beautyops/internal/config"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/hashicorp/go-retryablehttp"
)

// Request represents an HTTP request
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// Client interface for making HTTP requests
type Client interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// ClientConfig holds configuration for the HTTP client
type ClientConfig struct {
	Timeout time.Duration
	// RetryMax is the number of transport level retries. Notification delivery
	// keeps it low because the message router retries the whole handler.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// DefaultClientConfig returns the settings used for notification delivery
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:      30 * time.Second,
		RetryMax:     2,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
	}
}

// DefaultClient implements the Client interface on top of go-retryablehttp
type DefaultClient struct {
	client *retryablehttp.Client
}

// NewDefaultClient creates a new DefaultClient
func NewDefaultClient(cfg *config.Configuration, log *logger.Logger) Client {
	return NewClient(DefaultClientConfig(), log)
}

// NewClient creates a client with explicit settings
func NewClient(cc ClientConfig, log *logger.Logger) Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cc.RetryMax
	rc.RetryWaitMin = cc.RetryWaitMin
	rc.RetryWaitMax = cc.RetryWaitMax
	rc.HTTPClient.Timeout = cc.Timeout
	rc.Logger = &leveledLogger{log: log}
	// non-2xx responses are returned as *Error instead of a generic "giving up" error
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &DefaultClient{client: rc}
}

// Send makes an HTTP request and returns the response
func (c *DefaultClient) Send(ctx context.Context, req *Request) (*Response, error) {
	var body interface{}
	if req.Body != nil {
		body = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrHTTPClient)
	}

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Request to remote endpoint failed").
			WithReportableDetails(map[string]any{"url": req.URL}).
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read response body").
			Mark(ierr.ErrHTTPClient)
	}

	headers := make(map[string]string, len(resp.Header))
	for k, v := range resp.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, NewError(resp.StatusCode, respBody)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Headers:    headers,
	}, nil
}

// leveledLogger adapts the zap logger to retryablehttp.LeveledLogger
type leveledLogger struct {
	log *logger.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, keysAndValues...)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Infow(msg, keysAndValues...)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warnw(msg, keysAndValues...)
}
