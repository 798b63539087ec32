// Package instrumentation provides OpenTelemetry metrics and tracing
// for the Donetick MCP server.
//
// A Provider owns the meter and tracer providers and exposes a Metrics
// recorder used by the Donetick client pipeline (request counts,
// durations, retries, rate limiter waits) and the MCP tool layer
// (invocation counts and durations). Metrics export via Prometheus
// (default), OTLP or stdout; traces via OTLP, stdout or not at all.
//
// Instrumentation can be disabled entirely with
// INSTRUMENTATION_ENABLED=false, in which case the Provider hands out
// no-op recorders and tracers.
package instrumentation
