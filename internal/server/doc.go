// Package server holds the MCP server's shared state and its HTTP
// sidecars.
//
// ServerContext carries the Donetick client and read-only flag that
// tool handlers need, plus coordinated shutdown. HealthChecker serves
// Kubernetes liveness and readiness probes, and MetricsServer exposes
// Prometheus metrics on a dedicated port.
package server
