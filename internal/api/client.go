// Package api is the single HTTP client for the tutoring backend's /api surface.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"Kashar/internal/backend"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultUploadTimeout  = 120 * time.Second
)

// Credentials carries the bearer token for one authenticated call.
// It is passed explicitly so no auth state is shared between callers.
type Credentials struct {
	Token string
}

// Options configures a Client
type Options struct {
	BaseURL        string // e.g. http://localhost:8000/api
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	HTTPClient     *http.Client
	Logger         *slog.Logger
	Tracer         trace.Tracer
	Meter          metric.Meter
}

// Client talks to the tutoring backend
type Client struct {
	baseURL        string
	requestTimeout time.Duration
	uploadTimeout  time.Duration
	httpClient     *http.Client
	logger         *slog.Logger
	tracer         trace.Tracer
	duration       metric.Float64Histogram
	failures       metric.Int64Counter
}

// NewClient creates a new backend client
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = DefaultUploadTimeout
	}
	if opts.HTTPClient == nil {
		// Timeouts are applied per request through the context.
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("kashar")
	}
	if opts.Meter == nil {
		opts.Meter = otel.Meter("kashar")
	}

	duration, err := opts.Meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	failures, err := opts.Meter.Int64Counter(
		"kashar.api.errors",
		metric.WithDescription("Failed backend calls by error kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create error counter: %w", err)
	}

	return &Client{
		baseURL:        strings.TrimSuffix(opts.BaseURL, "/"),
		requestTimeout: opts.RequestTimeout,
		uploadTimeout:  opts.UploadTimeout,
		httpClient:     opts.HTTPClient,
		logger:         opts.Logger,
		tracer:         opts.Tracer,
		duration:       duration,
		failures:       failures,
	}, nil
}

// call describes one backend request
type call struct {
	name        string // stable operation name for spans and metrics
	method      string
	path        string
	creds       *Credentials // nil for unauthenticated endpoints
	body        io.Reader
	contentType string
	upload      bool
}

// postJSON marshals in and sends it as a JSON body
func (c *Client) postJSON(ctx context.Context, cl call, in, out any) error {
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", cl.name, err)
		}
		cl.body = bytes.NewReader(data)
		cl.contentType = "application/json"
	}
	if cl.method == "" {
		cl.method = http.MethodPost
	}
	return c.do(ctx, cl, out)
}

// do executes a call and decodes a 2xx JSON body into out
func (c *Client) do(ctx context.Context, cl call, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, cl.name, trace.WithAttributes(
		attribute.String("http.method", cl.method),
		attribute.String("http.route", cl.path),
	))
	start := time.Now()
	defer func() {
		c.duration.Record(ctx, float64(time.Since(start).Milliseconds()),
			metric.WithAttributes(attribute.String("operation", cl.name)))
		if err != nil {
			kind := Kind(err)
			c.failures.Add(ctx, 1, metric.WithAttributes(
				attribute.String("operation", cl.name),
				attribute.String("kind", kind),
			))
			span.RecordError(err)
			span.SetStatus(codes.Error, kind)
			c.logger.Warn("backend call failed", "operation", cl.name, "kind", kind, "error", err)
		}
		span.End()
	}()

	if cl.creds != nil && cl.creds.Token == "" {
		return fmt.Errorf("%s: %w", cl.name, ErrUnauthenticated)
	}

	timeout := c.requestTimeout
	if cl.upload {
		timeout = c.uploadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, cl.body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", cl.name, err)
	}
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	req.Header.Set("Accept", "application/json")
	if cl.creds != nil {
		req.Header.Set("Authorization", "Bearer "+cl.creds.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(err, cl.name)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransport(err, cl.name)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Path: cl.path, Detail: errorDetail(body)}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", cl.name, err)
	}
	return nil
}

// errorDetail extracts the server's message from an error body
func errorDetail(body []byte) string {
	var errResp backend.ErrorResponse
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Detail != "" {
			return errResp.Detail
		}
		if errResp.Error != "" {
			return errResp.Error
		}
	}
	return strings.TrimSpace(string(body))
}
