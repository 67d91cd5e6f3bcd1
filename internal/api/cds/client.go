// Package cds is a client for the pipeline resources of a CDS API.
//
// Every operation is split in two halves: a Build* function that validates
// the address components and returns a Request descriptor without doing any
// I/O, and a Client method that sends exactly one request and shapes the
// answer. The client keeps no state between calls and never retries.
package cds

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
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/abdesslem/cds/internal/domain"
)

const (
	defaultBaseURL   = "http://localhost:8081"
	defaultUserAgent = "cdsctl/1.0"
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for per-request debug records.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// Client sends pipeline requests to a CDS API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new CDS API client. The default HTTP client is
// NewHTTPClient(0).
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		httpClient: NewHTTPClient(0),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient returns an instrumented HTTP client that hands redirects back
// to the caller instead of following them. A zero timeout means none.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req and shapes the body into out according to req.Response:
// ResponseJSON decodes into out, ResponseText requires out to be a *string,
// ResponseSuccess ignores out. Non-2xx answers become *domain.APIError
// carrying the status and the raw body.
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	if req == nil {
		return domain.NewAPIError(domain.ErrorTypeInvalidArgument, "nil request")
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL(c.baseURL), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := c.setHeaders(httpReq, req)

	start := time.Now()
	c.logger.Debug("cds request",
		slog.String("request_id", requestID),
		slog.String("method", req.Method),
		slog.String("path", req.Path),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("cds response",
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.ErrStatus(resp.StatusCode, respBody).WithRequest(req.Method, req.Path)
	}

	return decode(req.Response, respBody, out)
}

func decode(kind ResponseKind, body []byte, out any) error {
	switch kind {
	case ResponseSuccess:
		return nil
	case ResponseText:
		s, ok := out.(*string)
		if !ok {
			return fmt.Errorf("text response needs a *string, got %T", out)
		}
		*s = string(body)
		return nil
	case ResponseJSON:
		if out == nil {
			return nil
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return errors.New("failed to unmarshal response: empty body")
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown response kind %s", kind)
	}
}

func (c *Client) setHeaders(httpReq *http.Request, req *Request) string {
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Response == ResponseText {
		httpReq.Header.Set("Accept", "text/plain, "+contentTypeYAML)
	} else {
		httpReq.Header.Set("Accept", contentTypeJSON)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	requestID := uuid.New().String()
	httpReq.Header.Set("X-Request-ID", requestID)
	return requestID
}
