package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the full route tree. Useful for mounting the gateway
// into an existing server or driving it with httptest.
func (g *Gateway) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(g.logRequests)

	// Probes.
	r.Get("/health", g.handleHealth())
	r.Handle("/metrics", promhttp.HandlerFor(g.metrics.registry, promhttp.HandlerOpts{}))

	// Caller API.
	r.Route("/v1", func(r chi.Router) {
		r.Post("/compress/text", g.handleCompressText())
		r.Post("/compress/conversation", g.handleCompressConversation())
		r.Post("/suggestions", g.handleSuggestions())
		r.Get("/stats", g.handleStats())
	})

	return r
}

// logRequests is a minimal structured access-log middleware.
func (g *Gateway) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		g.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
