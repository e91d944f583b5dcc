// Package backend defines the external summarization collaborator contract
// and its MCP implementation. The engine works without a backend; when one
// is configured it supplies higher-quality, model-driven summaries, and any
// failure degrades to the deterministic fallback instead of failing the call.
package backend

import (
	"context"
	"errors"

	"github.com/flemzord/compactd/pkg/conversation"
)

// ErrUnavailable indicates the backend is unreachable or returned an
// unusable response. It is never surfaced to the end caller: the session
// absorbs it and falls back to the deterministic strategy.
var ErrUnavailable = errors.New("backend: unavailable")

// Summarizer is the summarization collaborator contract. Implementations
// must be safe for concurrent use.
type Summarizer interface {
	// Connect establishes the backend session. Calling any summarize
	// method before a successful Connect returns ErrUnavailable.
	Connect(ctx context.Context) error

	// SummarizeText condenses a single text block toward the target ratio.
	SummarizeText(ctx context.Context, text string, ratio float64) (string, error)

	// SummarizeConversation condenses a whole conversation into summary
	// text bounded by maxTokens.
	SummarizeConversation(ctx context.Context, messages []conversation.Message, maxTokens int) (string, error)

	// Close tears down the backend session.
	Close() error
}
