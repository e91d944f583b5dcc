// Package session exposes the single entry point callers use for
// compression operations. A Session dispatches to the engine components,
// owns the live/fallback mode state, and absorbs backend failures so that
// every operation stays available in degraded form.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/compactd/internal/backend"
	"github.com/flemzord/compactd/internal/engine"
	"github.com/flemzord/compactd/internal/journal"
	"github.com/flemzord/compactd/pkg/conversation"
)

// Mode is the backend dispatch state of a session.
type Mode string

// Session modes.
const (
	// ModeLive delegates summarization to the configured backend.
	ModeLive Mode = "live"
	// ModeFallback uses the deterministic local strategy.
	ModeFallback Mode = "fallback"
)

// defaultBackendTimeout bounds a single backend delegation. Past it the
// operation falls back to the deterministic strategy instead of hanging.
const defaultBackendTimeout = 10 * time.Second

// Option configures optional Session behavior.
type Option func(*Session)

// WithLogger injects a structured logger. When nil or omitted, all log
// output is silently discarded.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithBackend attaches a summarization backend. Without one the session
// stays permanently in fallback mode.
func WithBackend(b backend.Summarizer) Option {
	return func(s *Session) { s.backend = b }
}

// WithJournal attaches an operation journal. Without one operations are
// not recorded and Stats reports no totals.
func WithJournal(j *journal.Journal) Option {
	return func(s *Session) { s.journal = j }
}

// WithBackendTimeout overrides the per-call backend delegation timeout.
func WithBackendTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// Session is the compression facade. All operations are safe to call
// whether or not Connect was invoked: an unconnected session behaves
// exactly like a fallback-mode session. Safe for concurrent use; the
// connected/mode pair is the only shared mutable state.
type Session struct {
	estimator  engine.Estimator
	compressor *engine.TextCompressor
	analyzer   *engine.Analyzer
	conv       *engine.ConversationCompressor

	backend backend.Summarizer
	journal *journal.Journal
	logger  *slog.Logger
	tracer  trace.Tracer
	timeout time.Duration

	mu        sync.Mutex
	connected bool
	mode      Mode
}

// New creates a Session around the given engine config. The session starts
// disconnected in fallback mode.
func New(cfg engine.Config, opts ...Option) *Session {
	estimator := engine.NewWordEstimator(cfg.TokensPerWord)

	s := &Session{
		estimator:  estimator,
		compressor: engine.NewTextCompressor(cfg),
		analyzer:   engine.NewAnalyzer(estimator, cfg),
		conv:       engine.NewConversationCompressor(estimator, cfg),
		tracer:     otel.Tracer("compactd/session"),
		timeout:    defaultBackendTimeout,
		mode:       ModeFallback,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	return s
}

// Connect attempts to establish the backend session. It never returns an
// error: a backend failure leaves the session in fallback mode, visible
// only through Stats. The boolean reports whether the connection attempt
// ran to completion, not whether a live backend was reached.
func (s *Session) Connect(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	ctx, span := s.tracer.Start(ctx, "session.connect")
	defer span.End()

	mode := ModeFallback
	if s.backend != nil {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.backend.Connect(ctx)
		cancel()
		if err != nil {
			s.logger.Warn("backend connect failed, staying in fallback mode",
				"error", err,
			)
		} else {
			mode = ModeLive
		}
	}

	s.mu.Lock()
	s.connected = true
	s.mode = mode
	s.mu.Unlock()

	span.SetAttributes(attribute.String("session.mode", string(mode)))
	s.logger.Info("session connected", "mode", string(mode))
	return true
}

// Close releases the backend session, if any.
func (s *Session) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// Mode returns the current dispatch mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// CompressText compresses a single text block toward the target ratio.
//
// In live mode the backend produces the compressed text and the result is
// measured locally; on any backend error the session drops to fallback
// mode and the deterministic strategy answers instead. Argument validation
// errors are returned before any work happens.
func (s *Session) CompressText(ctx context.Context, text string, ratio float64) (engine.Result, error) {
	ctx, span := s.tracer.Start(ctx, "session.compress_text")
	defer span.End()

	if err := engine.ValidateRatio(ratio); err != nil {
		return engine.Result{}, err
	}

	if s.Mode() == ModeLive && text != "" {
		out, err := s.delegateText(ctx, text, ratio)
		if err == nil {
			result := engine.ResultFor(text, out)
			s.record(ctx, journal.KindCompressText, ModeLive, text, result.CompressedText, result.Ratio)
			return result, nil
		}
		s.demote(err)
	}

	result, err := s.compressor.Compress(text, ratio)
	if err != nil {
		return engine.Result{}, err
	}
	s.record(ctx, journal.KindCompressText, ModeFallback, text, result.CompressedText, result.Ratio)
	return result, nil
}

// Suggestions analyzes the conversation and proposes compression
// candidates. Purely advisory and always local: the heuristics are cheap
// and deterministic, so there is nothing to delegate.
func (s *Session) Suggestions(ctx context.Context, messages []conversation.Message, threshold float64) (engine.Analysis, error) {
	ctx, span := s.tracer.Start(ctx, "session.suggestions",
		trace.WithAttributes(attribute.Int("conversation.messages", len(messages))))
	defer span.End()

	analysis, err := s.analyzer.Suggest(messages, threshold)
	if err != nil {
		return engine.Analysis{}, err
	}

	if s.journal != nil {
		entry := journal.Entry{
			Kind:           journal.KindSuggest,
			Mode:           string(s.Mode()),
			OriginalTokens: analysis.TotalTokens,
			Ratio:          1.0,
		}
		if err := s.journal.Record(ctx, entry); err != nil {
			s.logger.Warn("journal record failed", "kind", entry.Kind, "error", err)
		}
	}

	return analysis, nil
}

// CompressConversation condenses a whole conversation into a structured
// summary bounded by maxTokens. Extraction (key points, decisions) is
// always local; in live mode the backend replaces only the summary text,
// keeping the structural contract identical in both modes.
func (s *Session) CompressConversation(ctx context.Context, messages []conversation.Message, maxTokens int) (engine.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "session.compress_conversation",
		trace.WithAttributes(attribute.Int("conversation.messages", len(messages))))
	defer span.End()

	if err := engine.ValidateMaxTokens(maxTokens); err != nil {
		return engine.Summary{}, err
	}

	summary, err := s.conv.Compress(messages, maxTokens)
	if err != nil {
		return engine.Summary{}, err
	}

	mode := ModeFallback
	if s.Mode() == ModeLive && len(messages) > 0 {
		out, derr := s.delegateConversation(ctx, messages, maxTokens)
		if derr == nil {
			summary.SummaryText = out
			// The ratio must describe the summary actually returned, not
			// the discarded deterministic render.
			summary = s.conv.Rescore(summary, messages)
			mode = ModeLive
		} else {
			s.demote(derr)
		}
	}

	if s.journal != nil {
		original := engine.EstimateMessages(s.estimator, messages)
		entry := journal.Entry{
			Kind:             journal.KindCompressConversation,
			Mode:             string(mode),
			OriginalTokens:   original,
			CompressedTokens: int(summary.Ratio * float64(original)),
			Ratio:            summary.Ratio,
		}
		if err := s.journal.Record(ctx, entry); err != nil {
			s.logger.Warn("journal record failed", "kind", entry.Kind, "error", err)
		}
	}

	return summary, nil
}

// delegateText sends a text compression to the backend under the
// configured timeout.
func (s *Session) delegateText(ctx context.Context, text string, ratio float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.backend.SummarizeText(ctx, text, ratio)
}

// delegateConversation sends a conversation summary request to the backend
// under the configured timeout.
func (s *Session) delegateConversation(ctx context.Context, messages []conversation.Message, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.backend.SummarizeConversation(ctx, messages, maxTokens)
}

// demote drops the session to fallback mode after a backend failure.
// The failure is logged, never surfaced: callers see a fallback result
// and can observe the mode change through Stats.
func (s *Session) demote(err error) {
	s.mu.Lock()
	changed := s.mode != ModeFallback
	s.mode = ModeFallback
	s.mu.Unlock()

	if changed {
		s.logger.Warn("backend failed, demoted to fallback mode", "error", err)
	}
}

// record writes a text-compression journal entry, estimating token counts
// with the session's estimator.
func (s *Session) record(ctx context.Context, kind string, mode Mode, original, compressed string, ratio float64) {
	if s.journal == nil {
		return
	}
	entry := journal.Entry{
		Kind:             kind,
		Mode:             string(mode),
		OriginalTokens:   s.estimator.Estimate(original),
		CompressedTokens: s.estimator.Estimate(compressed),
		Ratio:            ratio,
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		s.logger.Warn("journal record failed", "kind", kind, "error", err)
	}
}
