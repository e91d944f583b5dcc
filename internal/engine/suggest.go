package engine

import (
	"time"

	"github.com/flemzord/compactd/pkg/conversation"
)

// Reason classifies why a message was proposed for compression.
type Reason string

// Suggestion reasons.
const (
	// ReasonLongMessage flags a message whose content exceeds the scaled
	// size threshold.
	ReasonLongMessage Reason = "long_message"
	// ReasonDuplicateContent flags a message whose content is an exact
	// repeat of an earlier message outside the protected window.
	ReasonDuplicateContent Reason = "duplicate_content"
	// ReasonStaleReference is reserved for referent-tracking analyzers
	// (e.g. a backend-driven classifier); the built-in analyzer does not
	// emit it.
	ReasonStaleReference Reason = "stale_reference"
)

// Suggestion proposes one message for compression. It never targets a
// message inside the protected recent window.
type Suggestion struct {
	MessageIndex     int    `json:"message_index"`
	Reason           Reason `json:"reason"`
	PotentialSavings int    `json:"potential_savings"`
}

// Analysis is the advisory output of a suggestion pass. It carries no
// side effects; the conversation is never modified.
type Analysis struct {
	TotalTokens      int          `json:"total_tokens"`
	Suggestions      []Suggestion `json:"suggestions"`
	EstimatedSavings int          `json:"estimated_savings"`
	Timestamp        time.Time    `json:"timestamp"`
}

// baselineThreshold is the threshold value at which the size gate equals
// Config.MinSuggestLength exactly. Lower thresholds shrink the gate
// (more suggestions), higher ones grow it (stricter).
const baselineThreshold = 0.7

// Analyzer scans a conversation and proposes compression candidates while
// protecting the most recent messages.
type Analyzer struct {
	estimator Estimator
	config    Config
}

// NewAnalyzer creates an Analyzer with the given estimator and config.
func NewAnalyzer(estimator Estimator, cfg Config) *Analyzer {
	return &Analyzer{estimator: estimator, config: cfg.withDefaults()}
}

// Suggest analyzes the conversation and returns compression candidates.
//
// TotalTokens is computed over every message, including the protected
// window. Candidates are drawn only from messages older than the window:
// a conversation with at most ProtectedWindow messages yields an empty
// suggestion list. PotentialSavings assumes half of a candidate's content
// is reclaimable, a deliberately conservative figure.
func (a *Analyzer) Suggest(messages []conversation.Message, threshold float64) (Analysis, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return Analysis{}, err
	}

	analysis := Analysis{
		TotalTokens: EstimateMessages(a.estimator, messages),
		Timestamp:   time.Now().UTC(),
	}

	compressible := len(messages) - a.config.ProtectedWindow
	if compressible <= 0 {
		return analysis, nil
	}

	minLength := scaledSizeGate(a.config.MinSuggestLength, threshold)
	seen := make(map[string]struct{}, compressible)

	for i := range messages[:compressible] {
		content := messages[i].Content
		if content == "" {
			continue
		}

		var reason Reason
		if _, dup := seen[content]; dup {
			reason = ReasonDuplicateContent
		} else {
			seen[content] = struct{}{}
			if len(content) > minLength {
				reason = ReasonLongMessage
			}
		}
		if reason == "" {
			continue
		}

		savings := len(content) / 2
		analysis.Suggestions = append(analysis.Suggestions, Suggestion{
			MessageIndex:     i,
			Reason:           reason,
			PotentialSavings: savings,
		})
		analysis.EstimatedSavings += savings
	}

	return analysis, nil
}

// scaledSizeGate scales the base size threshold by the caller's threshold
// parameter, normalized so the baseline threshold maps to the base exactly.
// A threshold of 0 admits every non-empty message.
func scaledSizeGate(base int, threshold float64) int {
	return int(float64(base) * threshold / baselineThreshold)
}
