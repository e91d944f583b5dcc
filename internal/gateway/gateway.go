// Package gateway exposes the compression session over HTTP: the four
// caller operations under /v1, a health probe, and Prometheus metrics.
// Transport framing lives entirely here; the engine knows nothing about it.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/flemzord/compactd/internal/session"
)

// Config holds the gateway settings.
type Config struct {
	// Addr is the listen address, e.g. ":8321".
	Addr string

	// RequestTimeout bounds a single request end to end.
	RequestTimeout time.Duration
}

// defaults fills zero-valued fields.
func (c *Config) defaults() {
	if c.Addr == "" {
		c.Addr = ":8321"
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
}

// Gateway serves the HTTP caller API backed by a Session.
type Gateway struct {
	config    Config
	session   *session.Session
	logger    *slog.Logger
	metrics   *Metrics
	server    *http.Server
	startedAt time.Time
}

// Option configures optional Gateway behavior.
type Option func(*Gateway)

// WithLogger injects a structured logger. When nil or omitted, all log
// output is silently discarded.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// New creates a Gateway around the given session.
func New(cfg Config, sess *session.Session, opts ...Option) *Gateway {
	cfg.defaults()

	g := &Gateway{
		config:    cfg,
		session:   sess,
		metrics:   NewMetrics(),
		startedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = slog.New(slog.DiscardHandler)
	}

	return g
}

// Start begins serving HTTP. It blocks until the listener fails or
// Shutdown is called.
func (g *Gateway) Start() error {
	g.server = &http.Server{
		Addr:              g.config.Addr,
		Handler:           http.TimeoutHandler(g.Handler(), g.config.RequestTimeout, "request timed out\n"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.logger.Info("gateway listening", "addr", g.config.Addr)

	err := g.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}
