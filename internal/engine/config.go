// Package engine implements the compression decision core: token
// estimation, deterministic text compression, suggestion analysis, and
// whole-conversation summarization.
package engine

// Config holds the tuning knobs for the compression engine.
type Config struct {
	// TokensPerWord is the subword expansion factor used by the estimator.
	// 0 means use DefaultTokensPerWord.
	TokensPerWord float64

	// ProtectedWindow is the number of most-recent messages exempt from
	// compression suggestions.
	ProtectedWindow int

	// MinSuggestLength is the content length (in bytes) above which a
	// message becomes a compression candidate at the baseline threshold.
	MinSuggestLength int

	// PreviewLength is the maximum length of an extracted snippet before
	// the truncation marker is applied.
	PreviewLength int

	// MaxKeyPoints caps the key_points section of a conversation summary.
	MaxKeyPoints int

	// MaxDecisions caps the decisions section of a conversation summary.
	MaxDecisions int

	// SummaryRatio is the default target ratio for whole-conversation
	// compression when the caller does not supply one.
	SummaryRatio float64
}

// withDefaults returns a copy of cfg with zero-valued fields replaced by
// sensible defaults.
func (cfg Config) withDefaults() Config {
	if cfg.TokensPerWord == 0 {
		cfg.TokensPerWord = DefaultTokensPerWord
	}
	if cfg.ProtectedWindow == 0 {
		cfg.ProtectedWindow = 10
	}
	if cfg.MinSuggestLength == 0 {
		cfg.MinSuggestLength = 500
	}
	if cfg.PreviewLength == 0 {
		cfg.PreviewLength = 100
	}
	if cfg.MaxKeyPoints == 0 {
		cfg.MaxKeyPoints = 5
	}
	if cfg.MaxDecisions == 0 {
		cfg.MaxDecisions = 3
	}
	if cfg.SummaryRatio == 0 {
		cfg.SummaryRatio = 0.1
	}
	return cfg
}
