package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency.
const (
	attrMethod = "method"
	attrPath   = "path"
	attrStatus = "status"
	attrReason = "reason"
	attrTool   = "tool"
)

// Metrics provides methods for recording observability metrics of the
// Donetick request pipeline and the MCP tool layer. The zero value is
// a no-op recorder.
type Metrics struct {
	// Donetick API request pipeline metrics
	apiRequestsTotal   metric.Int64Counter
	apiRequestDuration metric.Float64Histogram
	retriesTotal       metric.Int64Counter
	rateLimitWait      metric.Float64Histogram

	// MCP tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.apiRequestsTotal, err = meter.Int64Counter(
		"donetick_api_requests_total",
		metric.WithDescription("Total number of transport calls to the Donetick API"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create donetick_api_requests_total counter: %w", err)
	}

	m.apiRequestDuration, err = meter.Float64Histogram(
		"donetick_api_request_duration_seconds",
		metric.WithDescription("Donetick API transport call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create donetick_api_request_duration_seconds histogram: %w", err)
	}

	m.retriesTotal, err = meter.Int64Counter(
		"donetick_api_retries_total",
		metric.WithDescription("Total number of retried Donetick API calls by reason"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create donetick_api_retries_total counter: %w", err)
	}

	m.rateLimitWait, err = meter.Float64Histogram(
		"donetick_rate_limit_wait_seconds",
		metric.WithDescription("Time spent waiting for rate limiter admission"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create donetick_rate_limit_wait_seconds histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordAPIRequest records one transport call with its status code and
// duration. A status of 0 indicates the call failed before a response
// was received (e.g. timeout).
func (m *Metrics) RecordAPIRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.apiRequestsTotal == nil || m.apiRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.apiRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.apiRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordRetry records a retried transport call.
// Reason should be one of: "timeout", "server_error", "rate_limited".
func (m *Metrics) RecordRetry(ctx context.Context, reason string) {
	if m.retriesTotal == nil {
		return // Instrumentation not initialized
	}

	m.retriesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}

// RecordRateLimitWait records the time a request spent waiting for
// rate limiter admission.
func (m *Metrics) RecordRateLimitWait(ctx context.Context, duration time.Duration) {
	if m.rateLimitWait == nil {
		return // Instrumentation not initialized
	}

	m.rateLimitWait.Record(ctx, duration.Seconds())
}

// RecordToolInvocation records an MCP tool invocation with tool name,
// status ("success" or "error") and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
