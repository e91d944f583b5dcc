package engine

import (
	"strings"

	"github.com/flemzord/compactd/pkg/conversation"
)

// DefaultTokensPerWord is the empirical subword expansion factor: one
// whitespace-delimited word costs roughly 1.3 tokens for English text.
const DefaultTokensPerWord = 1.3

// EstimateMargin is the documented relative error of the word-count
// approximation against real tokenizers (roughly ±25%). Components that
// compare estimates against hard budgets should leave at least this much
// headroom.
const EstimateMargin = 0.25

// Estimator estimates the token count of a string.
type Estimator interface {
	Estimate(text string) int
}

// WordEstimator estimates tokens from the whitespace-delimited word count
// scaled by a subword factor. It is deterministic, allocation-light, and
// never fails; it is the single source of truth for every token-budget
// comparison in the engine.
type WordEstimator struct {
	TokensPerWord float64
}

// NewWordEstimator creates a WordEstimator with the given factor.
// If tokensPerWord is <= 0, defaults to DefaultTokensPerWord.
func NewWordEstimator(tokensPerWord float64) *WordEstimator {
	if tokensPerWord <= 0 {
		tokensPerWord = DefaultTokensPerWord
	}
	return &WordEstimator{TokensPerWord: tokensPerWord}
}

// Estimate returns the estimated token count for the given text.
// Empty or whitespace-only input costs zero tokens.
func (e *WordEstimator) Estimate(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	tokens := float64(words) * e.TokensPerWord
	// Round up to avoid underestimating against a hard budget.
	if tokens == float64(int(tokens)) {
		return int(tokens)
	}
	return int(tokens) + 1
}

// EstimateMessages returns the summed estimated tokens across all message
// contents. Messages with missing content contribute zero.
func EstimateMessages(estimator Estimator, messages []conversation.Message) int {
	total := 0
	for i := range messages {
		total += estimator.Estimate(messages[i].Content)
	}
	return total
}
