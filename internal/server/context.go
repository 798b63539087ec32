package server

import (
	"context"
	"sync"

	"github.com/teemow/donetick-mcp/internal/donetick"
	"github.com/teemow/donetick-mcp/internal/instrumentation"
)

// ServerContext holds the shared state for the MCP server: the
// Donetick client all tools go through and the read-only flag that
// gates mutating tools.
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	client   *donetick.Client
	metrics  *instrumentation.Metrics
	readOnly bool
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context wrapping the given
// Donetick client.
func NewServerContext(ctx context.Context, client *donetick.Client, readOnly bool) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		client:   client,
		readOnly: readOnly,
	}
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Client returns the Donetick client.
func (sc *ServerContext) Client() *donetick.Client {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.client
}

// Metrics returns the metrics recorder, or nil when instrumentation
// is not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder used by tool handlers.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// ReadOnly returns whether mutating tools are disabled.
func (sc *ServerContext) ReadOnly() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.readOnly
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context and releases the Donetick
// client's connections. Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	if sc.client != nil {
		sc.client.Close()
	}
	return nil
}
