package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wizarding-anonymous/cryo-sub004/log"
)

const (
	headerCallingService = "X-Calling-Service"
	headerRequestID      = "X-Request-Id"

	// maxResponseBytes bounds how much of a peer response is read into
	// memory; peers exchange small JSON payloads.
	maxResponseBytes = 1 << 20

	// errorBodySnippet is how much of an error response body is kept on a
	// StatusError for logs and messages.
	errorBodySnippet = 512
)

// StatusError is returned for non-2xx responses. It carries the HTTP status
// so the retry layer can tell client errors from transient ones.
type StatusError struct {
	Code int
	Body string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// StatusCode returns the HTTP status code.
func (e *StatusError) StatusCode() int {
	return e.Code
}

// Client issues JSON request/response exchanges against one peer service.
type Client struct {
	base           *url.URL
	http           *http.Client
	callingService string
	logger         log.Logger
	tracer         trace.Tracer
}

// New creates a client for the peer at baseURL. The timeout bounds a whole
// request/response exchange; per-attempt deadlines come from the context.
func New(baseURL string, timeout time.Duration, callingService string, logger log.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	if logger == nil {
		logger = &log.NoneLogger{}
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 32,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		base:           base,
		http:           &http.Client{Timeout: timeout, Transport: transport},
		callingService: callingService,
		logger:         logger,
		tracer:         otel.Tracer("httpclient"),
	}, nil
}

// Get issues a GET and decodes the JSON response into out (skipped when out
// is nil).
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with a JSON body and decodes the JSON response into out
// (skipped when out is nil).
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	// JoinPath keeps any path prefix on the configured base URL, e.g. a
	// gateway route like http://gateway/users-api.
	target := c.base.JoinPath(path)
	if query != nil {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", method, path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", target.Host+target.Path),
			attribute.String("peer.service", target.Host),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerCallingService, c.callingService)
	req.Header.Set(headerRequestID, uuid.NewString())

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")

		return fmt.Errorf("%s %s: %w", method, target.Host+target.Path, err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debugf("Failed to close response body: %v", closeErr)
		}
	}()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("read response from %s: %w", target.Host, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		span.SetStatus(codes.Error, resp.Status)

		return &StatusError{Code: resp.StatusCode, Body: snippet(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response from %s: %w", target.Host, err)
		}
	}

	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > errorBodySnippet {
		return s[:errorBodySnippet]
	}

	return s
}
