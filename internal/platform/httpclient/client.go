// Package httpclient is the outbound HTTP client used by the notifier
// adapters. A Client talks to one downstream. Each call is admitted by a
// circuit breaker and an optional rate limiter, traced as one client span,
// and retried with backoff when that is safe.
//
// Only idempotent requests, or requests carrying an Idempotency-Key header,
// are retried:
//
//	relay := httpclient.New(&cfg.Notify.Email.Client, "mail-relay", metrics, logger)
//	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, relay.BaseURL()+"/v1/messages", body)
//	req.Header.Set(httpclient.HeaderIdempotencyKey, key)
//	resp, err := relay.Do(ctx, req)
//
// IDs stored with WithRequestID and WithCorrelationID are forwarded as
// headers, together with the W3C trace context.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen11/layerflow/internal/platform/config"
	"github.com/jsamuelsen11/layerflow/internal/platform/telemetry"
)

const tracerName = "github.com/jsamuelsen11/layerflow/internal/platform/httpclient"

// Call results recorded on the client request metrics.
const (
	resultSuccess     = "success"
	resultError       = "error"
	resultCanceled    = "canceled"
	resultCircuitOpen = "circuit_open"
)

// Client is safe for concurrent use.
type Client struct {
	name    string
	baseURL string
	http    *http.Client
	breaker *gobreaker.TwoStepCircuitBreaker[struct{}]
	limiter *rate.Limiter
	retry   retryConfig
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// New builds a Client for the downstream called name. metrics may be nil.
func New(cfg *config.ClientConfig, name string, metrics *telemetry.Metrics, logger *slog.Logger) *Client {
	c := &Client{
		name:    name,
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewTwoStepCircuitBreaker[struct{}](breakerSettings(name, cfg.CircuitBreaker, logger)),
		retry: retryConfig{
			maxAttempts:     cfg.Retry.MaxAttempts,
			initialInterval: cfg.Retry.InitialInterval,
			maxInterval:     cfg.Retry.MaxInterval,
			multiplier:      cfg.Retry.Multiplier,
		},
		metrics: metrics,
		logger:  logger,
	}
	if rl := cfg.RateLimit; rl.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), rl.BurstSize)
	}
	return c
}

func breakerSettings(name string, cfg config.CircuitBreakerConfig, logger *slog.Logger) gobreaker.Settings {
	halfOpen := uint32(math.MaxUint32)
	if cfg.HalfOpenLimit < math.MaxUint32 {
		halfOpen = uint32(max(cfg.HalfOpenLimit, 0))
	}
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: halfOpen,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("downstream", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}
}

// Do sends req once the breaker and limiter admit it, retrying when the
// request is replayable.
//
// A response with a non-retryable status is returned with a nil error. When
// retries run out on a retryable status, the last response is returned
// with an error. The caller closes resp.Body in both cases. A rejected or
// failed call returns a nil response.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()

	done, err := c.breaker.Allow()
	if err != nil {
		c.record(ctx, req.Method, start, nil, err)
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}

	resp, err := c.send(ctx, req)

	// A caller giving up says nothing about the downstream.
	done(err == nil || errors.Is(err, context.Canceled))
	c.record(ctx, req.Method, start, resp, err)
	return resp, err
}

func (c *Client) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, req.Method+" "+c.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(req.Method),
			semconv.URLFull(req.URL.Redacted()),
			semconv.ServerAddress(req.URL.Hostname()),
			telemetry.AttrPeerService.String(c.name),
		),
	)
	defer span.End()

	req = req.WithContext(ctx)
	forwardedFrom(ctx).apply(req.Header)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	var resp *http.Response
	err := c.doWithRetry(ctx, req, &resp)
	if resp != nil {
		span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return resp, err
}

// BaseURL is the downstream's configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Name is the downstream's name.
func (c *Client) Name() string { return c.name }

// HealthCheck reports the breaker state without calling the downstream.
// Any state other than closed is unhealthy.
func (c *Client) HealthCheck(context.Context) error {
	if state := c.breaker.State(); state != gobreaker.StateClosed {
		return fmt.Errorf("%s: circuit breaker %s", c.name, state)
	}
	return nil
}

// record runs for rejected calls too, so open-circuit traffic is visible.
func (c *Client) record(ctx context.Context, method string, start time.Time, resp *http.Response, err error) {
	if c.metrics == nil {
		return
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	attrs := metric.WithAttributes(
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPStatus.Int(status),
		telemetry.AttrPeerService.String(c.name),
		telemetry.AttrResult.String(callResult(status, err)),
	)
	c.metrics.ClientRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	c.metrics.ClientRequestTotal.Add(ctx, 1, attrs)
}

func callResult(status int, err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return resultCircuitOpen
	case errors.Is(err, context.Canceled):
		return resultCanceled
	case err == nil && status > 0 && status < http.StatusBadRequest:
		return resultSuccess
	default:
		return resultError
	}
}
