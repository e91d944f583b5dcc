package gateway

import (
	"net/http"
	"time"

	"github.com/flemzord/compactd/internal/session"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status      string       `json:"status"` // "ok" or "degraded"
	BackendMode session.Mode `json:"backend_mode"`
	Uptime      float64      `json:"uptime_seconds"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
//
// The gateway itself answering is the health signal; a session in fallback
// mode reports "degraded" but still 200, because every operation remains
// available in degraded form.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:      "ok",
			BackendMode: g.session.Mode(),
			Uptime:      time.Since(g.startedAt).Seconds(),
		}
		if resp.BackendMode == session.ModeFallback && g.session.Stats(r.Context()).Connected {
			resp.Status = "degraded"
		}
		g.writeJSON(w, http.StatusOK, resp)
	}
}
