package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/flemzord/compactd/pkg/conversation"
)

// truncationMarker is appended to every extracted snippet so readers can
// tell a preview from a full message.
const truncationMarker = "..."

// Keyword lexicons for the deterministic classification pass. Matching is
// case-insensitive substring containment. A live backend may substitute
// model-based classification, but the structural contract (caps, preview
// truncation, ordering) is identical either way.
var (
	decisionKeywords = []string{"decision", "decided"}
	actionKeywords   = []string{"implement", "build", "create"}
)

// Summary is a structured condensation of a whole conversation. It is
// derived and ephemeral; the engine never persists it.
type Summary struct {
	SummaryText  string    `json:"summary"`
	KeyPoints    []string  `json:"key_points"`
	Decisions    []string  `json:"decisions"`
	MessageCount int       `json:"message_count"`
	Ratio        float64   `json:"compression_ratio"`
	Timestamp    time.Time `json:"timestamp"`
}

// ConversationCompressor condenses an entire conversation into a bounded
// structured summary.
type ConversationCompressor struct {
	estimator Estimator
	config    Config
}

// NewConversationCompressor creates a ConversationCompressor.
func NewConversationCompressor(estimator Estimator, cfg Config) *ConversationCompressor {
	return &ConversationCompressor{estimator: estimator, config: cfg.withDefaults()}
}

// Compress extracts key points and decisions from the conversation and
// returns a summary whose estimated size respects maxTokens as a soft
// budget.
//
// Classification is independent per message and order-preserving: a message
// may qualify as a decision, a key point, both, or neither. KeyPoints keeps
// at most the first MaxKeyPoints qualifying snippets, Decisions the first
// MaxDecisions, regardless of conversation size.
//
// When the estimated summary exceeds maxTokens, the oldest key points are
// dropped first. Decisions are higher priority and are never dropped for
// budget; if decisions alone still exceed the budget the summary is
// returned best-effort over budget.
func (c *ConversationCompressor) Compress(messages []conversation.Message, maxTokens int) (Summary, error) {
	if err := ValidateMaxTokens(maxTokens); err != nil {
		return Summary{}, err
	}

	s := Summary{
		SummaryText:  fmt.Sprintf("Conversation with %d messages", len(messages)),
		MessageCount: len(messages),
		Ratio:        1.0,
		Timestamp:    time.Now().UTC(),
	}

	for i := range messages {
		content := messages[i].Content
		if content == "" {
			continue
		}
		lower := strings.ToLower(content)

		if len(s.Decisions) < c.config.MaxDecisions && containsAny(lower, decisionKeywords) {
			s.Decisions = append(s.Decisions, c.preview(content))
		}
		if len(s.KeyPoints) < c.config.MaxKeyPoints && containsAny(lower, actionKeywords) {
			s.KeyPoints = append(s.KeyPoints, c.preview(content))
		}
	}

	// Soft budget: shed the oldest key points until the rendered summary
	// fits, keeping decisions intact.
	for c.estimator.Estimate(renderSummary(s)) > maxTokens && len(s.KeyPoints) > 0 {
		s.KeyPoints = s.KeyPoints[1:]
	}
	if len(s.KeyPoints) == 0 {
		s.KeyPoints = nil
	}

	originalTokens := EstimateMessages(c.estimator, messages)
	if originalTokens > 0 {
		s.Ratio = float64(c.estimator.Estimate(renderSummary(s))) / float64(originalTokens)
	}

	return s, nil
}

// Rescore recomputes the achieved ratio after the summary text has been
// replaced, e.g. by a backend-produced synopsis. Structural fields are left
// untouched; only Ratio changes, using the same estimator as Compress.
func (c *ConversationCompressor) Rescore(s Summary, messages []conversation.Message) Summary {
	s.Ratio = 1.0
	if original := EstimateMessages(c.estimator, messages); original > 0 {
		s.Ratio = float64(c.estimator.Estimate(renderSummary(s))) / float64(original)
	}
	return s
}

// preview truncates content to the configured preview length (in runes)
// and appends the truncation marker.
func (c *ConversationCompressor) preview(content string) string {
	runes := []rune(content)
	if len(runes) > c.config.PreviewLength {
		runes = runes[:c.config.PreviewLength]
	}
	return string(runes) + truncationMarker
}

// renderSummary flattens a summary to text for token estimation, matching
// how a downstream consumer would splice it into a prompt.
func renderSummary(s Summary) string {
	var b strings.Builder
	b.WriteString(s.SummaryText)
	for _, p := range s.KeyPoints {
		b.WriteString("\n- ")
		b.WriteString(p)
	}
	for _, d := range s.Decisions {
		b.WriteString("\n- ")
		b.WriteString(d)
	}
	return b.String()
}

// containsAny reports whether text contains at least one keyword.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
