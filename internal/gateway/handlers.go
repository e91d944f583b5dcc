package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flemzord/compactd/internal/engine"
	"github.com/flemzord/compactd/internal/journal"
	"github.com/flemzord/compactd/pkg/conversation"
)

// compressTextRequest is the body for POST /v1/compress/text.
type compressTextRequest struct {
	Text  string  `json:"text"`
	Ratio float64 `json:"ratio"`
}

// suggestionsRequest is the body for POST /v1/suggestions.
type suggestionsRequest struct {
	Conversation []conversation.Message `json:"conversation"`
	Threshold    float64                `json:"threshold"`
}

// compressConversationRequest is the body for POST /v1/compress/conversation.
type compressConversationRequest struct {
	Messages  []conversation.Message `json:"messages"`
	MaxTokens int                    `json:"max_tokens"`
}

// errorResponse is the JSON shape for all error replies.
type errorResponse struct {
	Error string `json:"error"`
}

// handleCompressText returns an http.HandlerFunc for POST /v1/compress/text.
func (g *Gateway) handleCompressText() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req compressTextRequest
		if !g.decode(w, r, &req) {
			return
		}

		result, err := g.session.CompressText(r.Context(), req.Text, req.Ratio)
		if err != nil {
			g.writeError(w, journal.KindCompressText, err)
			return
		}

		g.metrics.RecordOperation(journal.KindCompressText, string(g.session.Mode()), result.Ratio)
		g.writeJSON(w, http.StatusOK, result)
	}
}

// handleSuggestions returns an http.HandlerFunc for POST /v1/suggestions.
func (g *Gateway) handleSuggestions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req suggestionsRequest
		if !g.decode(w, r, &req) {
			return
		}

		analysis, err := g.session.Suggestions(r.Context(), req.Conversation, req.Threshold)
		if err != nil {
			g.writeError(w, journal.KindSuggest, err)
			return
		}

		g.metrics.RecordOperation(journal.KindSuggest, string(g.session.Mode()), 1.0)
		g.writeJSON(w, http.StatusOK, analysis)
	}
}

// handleCompressConversation returns an http.HandlerFunc for
// POST /v1/compress/conversation.
func (g *Gateway) handleCompressConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req compressConversationRequest
		if !g.decode(w, r, &req) {
			return
		}

		summary, err := g.session.CompressConversation(r.Context(), req.Messages, req.MaxTokens)
		if err != nil {
			g.writeError(w, journal.KindCompressConversation, err)
			return
		}

		g.metrics.RecordOperation(journal.KindCompressConversation, string(g.session.Mode()), summary.Ratio)
		g.writeJSON(w, http.StatusOK, summary)
	}
}

// handleStats returns an http.HandlerFunc for GET /v1/stats.
func (g *Gateway) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.writeJSON(w, http.StatusOK, g.session.Stats(r.Context()))
	}
}

// decode parses a JSON request body, replying 400 on malformed input.
func (g *Gateway) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		g.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body: " + err.Error()})
		return false
	}
	return true
}

// writeError maps engine errors to HTTP status codes. Argument validation
// maps to 400; anything else is a 500 (backend failures never reach here,
// the session absorbs them).
func (g *Gateway) writeError(w http.ResponseWriter, op string, err error) {
	g.metrics.RecordError(op)

	status := http.StatusInternalServerError
	if errors.Is(err, engine.ErrInvalidArgument) {
		status = http.StatusBadRequest
	} else {
		g.logger.Error("operation failed", "op", op, "error", err)
	}
	g.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeJSON writes a JSON response with the given status.
func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
