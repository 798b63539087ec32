package donetick

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/donetick-mcp/internal/instrumentation"
	"github.com/teemow/donetick-mcp/internal/logging"
	"github.com/teemow/donetick-mcp/internal/ratelimit"
)

const (
	// authHeader carries the eAPI access token
	authHeader = "secretkey"

	// DefaultMaxRetries is the transport call budget per logical request
	DefaultMaxRetries = 3

	// defaultRetryAfter applies when a 429 carries no parsable Retry-After
	defaultRetryAfter = 60 * time.Second

	// baseBackoff and maxBackoff bound the exponential retry delay
	baseBackoff = 1 * time.Second
	maxBackoff  = 60 * time.Second

	// jitterFraction is the symmetric jitter applied to backoff delays
	jitterFraction = 0.25
)

// Transport timeouts, matching the connection pool the original
// deployment was tuned for.
const (
	connectTimeout      = 5 * time.Second
	requestTimeout      = 30 * time.Second
	idleConnTimeout     = 5 * time.Second
	maxIdleConns        = 100
	maxIdleConnsPerHost = 20
)

// Retry reason labels for metrics.
const (
	retryReasonTimeout     = "timeout"
	retryReasonServerError = "server_error"
	retryReasonRateLimited = "rate_limited"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the Donetick instance URL (required)
	BaseURL string

	// APIToken is the eAPI access token (required)
	APIToken string

	// RatePerSecond is the outbound request rate limit (default 10)
	RatePerSecond float64

	// Burst is the rate limiter burst size (default 10)
	Burst int

	// MaxRetries is the transport call budget per logical request
	// (default DefaultMaxRetries)
	MaxRetries int

	// HTTPClient overrides the default pooled transport; mainly for tests
	HTTPClient *http.Client

	// Logger receives request pipeline logs; slog.Default() when nil
	Logger *slog.Logger

	// Metrics records pipeline metrics when non-nil
	Metrics *instrumentation.Metrics

	// Tracer creates spans for logical requests when non-nil
	Tracer trace.Tracer
}

// Client talks to a Donetick instance's external API. One client owns
// one token bucket, shared by all requests issued through it; any
// number of logical requests may be in flight concurrently.
type Client struct {
	baseURL    string
	apiToken   string
	maxRetries int
	limiter    *ratelimit.Bucket
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	tracer     trace.Tracer

	// sleep is the suspension primitive for backoff and Retry-After
	// waits. Overridable in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Client, validating options eagerly.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("donetick: base URL is required")
	}
	if opts.APIToken == "" {
		return nil, fmt.Errorf("donetick: API token is required")
	}

	rate := opts.RatePerSecond
	if rate == 0 {
		rate = 10.0
	}
	burst := opts.Burst
	if burst == 0 {
		burst = 10
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	limiter, err := ratelimit.New(rate, burst)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: connectTimeout,
				}).DialContext,
				MaxIdleConns:          maxIdleConns,
				MaxIdleConnsPerHost:   maxIdleConnsPerHost,
				IdleConnTimeout:       idleConnTimeout,
				TLSHandshakeTimeout:   connectTimeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiToken:   opts.APIToken,
		maxRetries: maxRetries,
		limiter:    limiter,
		httpClient: httpClient,
		logger:     logger,
		metrics:    opts.Metrics,
		tracer:     opts.Tracer,
		sleep:      sleepContext,
	}, nil
}

// BaseURL returns the Donetick instance URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases the transport's pooled connections. In-flight
// requests are allowed to fail naturally rather than being cancelled.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// do performs one logical request: rate limiter admission, then up to
// maxRetries transport calls with failure classification and backoff.
// It returns the response body of the first 2xx answer.
//
// Classification per attempt:
//   - 429: wait the server-specified Retry-After and retry; the
//     attempt still counts against the budget
//   - 2xx: success
//   - other 4xx: fatal, returned immediately as *ClientError
//   - 5xx and transport timeouts: retry with jittered exponential
//     backoff; the last attempt's failure is wrapped in
//     *RetriesExhaustedError
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("donetick: encode request body: %w", err)
		}
	}

	logger := c.logger.With(
		logging.RequestID(uuid.NewString()),
		logging.Method(method),
		logging.Path(path),
	)

	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, "donetick.request", trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("donetick.path", path),
		))
		defer span.End()

		result, err := c.doAttempts(ctx, logger, method, requestURL, path, payload)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		return result, err
	}

	return c.doAttempts(ctx, logger, method, requestURL, path, payload)
}

// doAttempts runs the retry loop for one logical request.
func (c *Client) doAttempts(ctx context.Context, logger *slog.Logger, method, requestURL, path string, payload []byte) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		// Admission control: one token per transport call.
		waitStart := time.Now()
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil, fmt.Errorf("donetick: rate limiter: %w", err)
		}
		if c.metrics != nil {
			c.metrics.RecordRateLimitWait(ctx, time.Since(waitStart))
		}

		logger.Debug("issuing request", logging.Attempt(attempt+1))

		attemptStart := time.Now()
		status, respBody, err := c.roundTrip(ctx, method, requestURL, payload)
		if err != nil {
			if !isTimeout(err) {
				// Cancellation and hard transport failures are not
				// retryable classifications; propagate as-is.
				return nil, fmt.Errorf("donetick: %s %s: %w", method, path, err)
			}

			lastErr = &TimeoutError{Err: err}
			if c.metrics != nil {
				c.metrics.RecordAPIRequest(ctx, method, path, 0, time.Since(attemptStart))
			}
			if attempt == c.maxRetries-1 {
				logger.Error("request timed out, retries exhausted",
					logging.Attempt(attempt+1),
					logging.Err(err))
				return nil, &RetriesExhaustedError{Attempts: c.maxRetries, Cause: lastErr}
			}
			if err := c.backoff(ctx, logger, attempt, retryReasonTimeout); err != nil {
				return nil, err
			}
			continue
		}

		if c.metrics != nil {
			c.metrics.RecordAPIRequest(ctx, method, path, status, time.Since(attemptStart))
		}

		switch {
		case status == http.StatusTooManyRequests:
			retryAfter := parseRetryAfter(respBody.header)
			lastErr = &RateLimitedError{RetryAfter: retryAfter}
			if attempt == c.maxRetries-1 {
				return nil, &RetriesExhaustedError{Attempts: c.maxRetries, Cause: lastErr}
			}
			logger.Warn("rate limited by server",
				slog.Duration("retry_after", retryAfter),
				logging.Attempt(attempt+1))
			if c.metrics != nil {
				c.metrics.RecordRetry(ctx, retryReasonRateLimited)
			}
			if err := c.sleep(ctx, retryAfter); err != nil {
				return nil, err
			}

		case status >= 200 && status < 300:
			return respBody.data, nil

		case status >= 400 && status < 500:
			logger.Error("client error, not retrying", logging.Status(strconv.Itoa(status)))
			return nil, newClientError(status, respBody.data)

		case status >= 500:
			lastErr = &ServerError{StatusCode: status, Body: string(respBody.data)}
			if attempt == c.maxRetries-1 {
				logger.Error("server error, retries exhausted", logging.Status(strconv.Itoa(status)))
				return nil, &RetriesExhaustedError{Attempts: c.maxRetries, Cause: lastErr}
			}
			if err := c.backoff(ctx, logger, attempt, retryReasonServerError); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("donetick: %s %s: unexpected status %d", method, path, status)
		}
	}

	return nil, &RetriesExhaustedError{Attempts: c.maxRetries, Cause: lastErr}
}

// response bundles what the retry loop needs from one transport call.
type response struct {
	data   []byte
	header http.Header
}

// roundTrip issues a single HTTP call and drains the body.
func (c *Client) roundTrip(ctx context.Context, method, requestURL string, payload []byte) (int, response, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return 0, response{}, err
	}
	req.Header.Set(authHeader, c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, response{}, err
	}

	return resp.StatusCode, response{data: data, header: resp.Header}, nil
}

// backoff suspends the caller for min(base * 2^attempt, max) with
// symmetric jitter of up to ±25%.
func (c *Client) backoff(ctx context.Context, logger *slog.Logger, attempt int, reason string) error {
	delay := baseBackoff << attempt
	if delay > maxBackoff || delay <= 0 {
		delay = maxBackoff
	}
	jitter := time.Duration((rand.Float64()*2 - 1) * jitterFraction * float64(delay))
	delay += jitter

	logger.Warn("retrying after backoff",
		logging.Attempt(attempt+1),
		slog.Duration("delay", delay),
		slog.String("reason", reason))
	if c.metrics != nil {
		c.metrics.RecordRetry(ctx, reason)
	}

	return c.sleep(ctx, delay)
}

// parseRetryAfter reads a Retry-After header as seconds, falling back
// to the default when absent or unparsable.
func parseRetryAfter(header http.Header) time.Duration {
	value := header.Get("Retry-After")
	if value == "" {
		return defaultRetryAfter
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds < 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds * float64(time.Second))
}

// isTimeout reports whether a transport error is a timeout, as opposed
// to cancellation or a hard connection failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// sleepContext suspends the caller for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
