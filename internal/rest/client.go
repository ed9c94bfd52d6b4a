// Package rest provides the instrumented HTTP transport for the
// UnbelievaBoat API. It handles auth header injection, request-ID
// propagation, OpenTelemetry tracing and metrics, and structured logging.
// Error-code mapping is layered on top by the root package.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/unbelievaboat-go/internal/platform/logging"
)

const (
	// instrumentationName is used for the OpenTelemetry tracer and meter.
	instrumentationName = "github.com/jsamuelsen/unbelievaboat-go/internal/rest"

	// defaultTimeout is the per-request timeout if none is configured.
	defaultTimeout = 30 * time.Second

	// headerRequestID correlates a request through logs.
	headerRequestID = "X-Request-ID"

	// transportMaxIdleConnsPerHost bounds idle connections to the API host.
	transportMaxIdleConnsPerHost = 10

	// transportIdleConnTimeout is the idle connection timeout.
	transportIdleConnTimeout = 90 * time.Second
)

// Config configures a Client.
type Config struct {
	// BaseURL is the API base, e.g. "https://unbelievaboat.com/api/v1".
	BaseURL string

	// Token is the application token sent in the authorization header.
	Token string

	// UserAgent is sent as the User-Agent header when non-empty.
	UserAgent string

	// Timeout is the per-request timeout. Defaults to 30s.
	Timeout time.Duration

	// HTTPClient overrides the underlying http.Client when non-nil.
	// Its Timeout is left as configured by the caller.
	HTTPClient *http.Client

	// Logger is an optional structured logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client is a thin instrumented HTTP client. It issues exactly one request
// per call: no retries, no backoff, no caching.
type Client struct {
	http      *http.Client
	baseURL   string
	token     string
	userAgent string
	logger    *slog.Logger

	tracer trace.Tracer

	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// Response is the outcome of a single API request: the status code plus the
// raw JSON body, fully read and closed.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}

	if cfg.Token == "" {
		return nil, errors.New("token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: transportMaxIdleConnsPerHost,
				IdleConnTimeout:     transportIdleConnTimeout,
			},
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "rest.Client"))

	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"unb.client.request.duration",
		metric.WithDescription("Duration of UnbelievaBoat API requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	requestTotal, err := meter.Int64Counter(
		"unb.client.request.total",
		metric.WithDescription("Total number of UnbelievaBoat API requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return &Client{
		http:            httpClient,
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		token:           cfg.Token,
		userAgent:       cfg.UserAgent,
		logger:          logger,
		tracer:          otel.Tracer(instrumentationName),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

// Get performs a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// Delete performs a DELETE request with optional query parameters.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, query, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPatch, path, nil, body)
}

// do executes one HTTP request and reads the full response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	startTime := time.Now()

	requestURL := c.buildURL(path, query)

	logger := logging.FromContext(ctx, c.logger).With(
		slog.String("method", method),
		slog.String("path", path),
	)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("authorization", c.token)
	req.Header.Set(headerRequestID, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("HTTP %s unbelievaboat", method),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", requestURL),
			attribute.String("peer.service", "unbelievaboat"),
		),
	)
	defer span.End()

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.recordMetrics(ctx, method, 0, time.Since(startTime))
		logger.Error("request failed",
			slog.String("request_id", requestID),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.recordMetrics(ctx, method, resp.StatusCode, time.Since(startTime))
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	c.recordMetrics(ctx, method, resp.StatusCode, time.Since(startTime))

	logger.Debug("request completed",
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(startTime)),
	)

	return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
}

// buildURL joins the base URL, path, and encoded query parameters.
func (c *Client) buildURL(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	full := c.baseURL + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}

	return full
}

// recordMetrics records duration and count for one request.
func (c *Client) recordMetrics(ctx context.Context, method string, statusCode int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", "unbelievaboat"),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	c.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	c.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}
