package engine_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/flemzord/compactd/internal/engine"
	"github.com/flemzord/compactd/pkg/conversation"
)

func newConversationCompressor(cfg engine.Config) *engine.ConversationCompressor {
	return engine.NewConversationCompressor(engine.NewWordEstimator(cfg.TokensPerWord), cfg)
}

// ---------------------------------------------------------------------------
// ConversationCompressor.Compress — validation and empty input
// ---------------------------------------------------------------------------

func TestConversationCompressor_InvalidMaxTokens(t *testing.T) {
	t.Parallel()

	c := newConversationCompressor(engine.Config{})

	for _, maxTokens := range []int{0, -1, -100} {
		_, err := c.Compress(messagesOf("hello"), maxTokens)
		if !errors.Is(err, engine.ErrInvalidMaxTokens) {
			t.Errorf("Compress(maxTokens=%d) error = %v, want ErrInvalidMaxTokens", maxTokens, err)
		}
		if !errors.Is(err, engine.ErrInvalidArgument) {
			t.Errorf("Compress(maxTokens=%d) error should wrap ErrInvalidArgument", maxTokens)
		}
	}
}

func TestConversationCompressor_EmptyConversation(t *testing.T) {
	t.Parallel()

	c := newConversationCompressor(engine.Config{})

	summary, err := c.Compress(nil, 100)
	if err != nil {
		t.Fatalf("Compress(nil) unexpected error: %v", err)
	}

	if summary.MessageCount != 0 {
		t.Errorf("MessageCount = %d, want 0", summary.MessageCount)
	}
	if summary.SummaryText != "Conversation with 0 messages" {
		t.Errorf("SummaryText = %q", summary.SummaryText)
	}
	if summary.Ratio != 1.0 {
		t.Errorf("Ratio = %v, want 1.0 by convention for empty input", summary.Ratio)
	}
	if len(summary.KeyPoints) != 0 || len(summary.Decisions) != 0 {
		t.Errorf("extractions = (%v, %v), want empty", summary.KeyPoints, summary.Decisions)
	}
}

// ---------------------------------------------------------------------------
// ConversationCompressor.Compress — extraction
// ---------------------------------------------------------------------------

func TestConversationCompressor_ExtractsDecision(t *testing.T) {
	t.Parallel()

	c := newConversationCompressor(engine.Config{})
	msgs := messagesOf(
		"Let's look at the options",
		"Here are the tradeoffs",
		"More discussion",
		"we decided to use X",
		"Sounds good",
	)

	summary, err := c.Compress(msgs, 1000)
	if err != nil {
		t.Fatalf("Compress() unexpected error: %v", err)
	}

	if len(summary.Decisions) != 1 {
		t.Fatalf("Decisions = %v, want exactly one entry", summary.Decisions)
	}
	if summary.Decisions[0] != "we decided to use X..." {
		t.Errorf("Decisions[0] = %q, want the message plus truncation marker", summary.Decisions[0])
	}
	if summary.MessageCount != 5 {
		t.Errorf("MessageCount = %d, want 5", summary.MessageCount)
	}
}

func TestConversationCompressor_Classification(t *testing.T) {
	t.Parallel()

	c := newConversationCompressor(engine.Config{})

	tests := []struct {
		name         string
		content      string
		wantKeyPoint bool
		wantDecision bool
	}{
		{name: "decision_only", content: "The DECISION is final", wantDecision: true},
		{name: "action_only", content: "Please implement the parser", wantKeyPoint: true},
		{name: "both", content: "We decided to build the cache", wantKeyPoint: true, wantDecision: true},
		{name: "neither", content: "How was your weekend", wantKeyPoint: false, wantDecision: false},
		{name: "case_insensitive", content: "DeCiDeD and CREATE", wantKeyPoint: true, wantDecision: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			summary, err := c.Compress(messagesOf(tt.content), 1000)
			if err != nil {
				t.Fatalf("Compress() unexpected error: %v", err)
			}
			if got := len(summary.KeyPoints) == 1; got != tt.wantKeyPoint {
				t.Errorf("key point extracted = %v, want %v", got, tt.wantKeyPoint)
			}
			if got := len(summary.Decisions) == 1; got != tt.wantDecision {
				t.Errorf("decision extracted = %v, want %v", got, tt.wantDecision)
			}
		})
	}
}

func TestConversationCompressor_TruncatesSnippets(t *testing.T) {
	t.Parallel()

	c := newConversationCompressor(engine.Config{})
	long := "we decided that " + strings.Repeat("é", 300)

	summary, err := c.Compress(messagesOf(long), 10000)
	if err != nil {
		t.Fatalf("Compress() unexpected error: %v", err)
	}
	if len(summary.Decisions) != 1 {
		t.Fatalf("Decisions = %v, want one entry", summary.Decisions)
	}

	snippet := summary.Decisions[0]
	if !strings.HasSuffix(snippet, "...") {
		t.Errorf("snippet %q should end with truncation marker", snippet)
	}
	// 100 runes of preview plus the 3-rune marker; rune-safe for non-ASCII.
	if got := utf8.RuneCountInString(snippet); got != 103 {
		t.Errorf("snippet rune count = %d, want 103", got)
	}
}

// ---------------------------------------------------------------------------
// ConversationCompressor.Compress — caps
// ---------------------------------------------------------------------------

func TestConversationCompressor_Caps(t *testing.T) {
	t.Parallel()

	c := newConversationCompressor(engine.Config{})

	for _, size := range []int{1, 10, 100, 10000} {
		msgs := make([]conversation.Message, size)
		for i := range msgs {
			msgs[i] = conversation.Message{
				Role:    conversation.RoleAssistant,
				Content: fmt.Sprintf("decided to implement feature %d", i),
			}
		}

		summary, err := c.Compress(msgs, 1_000_000)
		if err != nil {
			t.Fatalf("Compress(%d msgs) unexpected error: %v", size, err)
		}
		if len(summary.KeyPoints) > 5 {
			t.Errorf("%d msgs: len(KeyPoints) = %d, want <= 5", size, len(summary.KeyPoints))
		}
		if len(summary.Decisions) > 3 {
			t.Errorf("%d msgs: len(Decisions) = %d, want <= 3", size, len(summary.Decisions))
		}
		if summary.MessageCount != size {
			t.Errorf("MessageCount = %d, want %d", summary.MessageCount, size)
		}
	}
}

func TestConversationCompressor_OrderPreserved(t *testing.T) {
	t.Parallel()

	c := newConversationCompressor(engine.Config{})
	msgs := messagesOf(
		"decided on alpha",
		"decided on beta",
		"decided on gamma",
		"decided on delta", // beyond the cap of 3
	)

	summary, err := c.Compress(msgs, 1000)
	if err != nil {
		t.Fatalf("Compress() unexpected error: %v", err)
	}

	want := []string{"decided on alpha...", "decided on beta...", "decided on gamma..."}
	if len(summary.Decisions) != len(want) {
		t.Fatalf("Decisions = %v, want %v", summary.Decisions, want)
	}
	for i := range want {
		if summary.Decisions[i] != want[i] {
			t.Errorf("Decisions[%d] = %q, want %q", i, summary.Decisions[i], want[i])
		}
	}
}

// ---------------------------------------------------------------------------
// ConversationCompressor.Compress — token budget
// ---------------------------------------------------------------------------

func TestConversationCompressor_BudgetDropsKeyPointsFirst(t *testing.T) {
	t.Parallel()

	c := newConversationCompressor(engine.Config{})

	msgs := messagesOf(
		"implement the long module with many words in this description",
		"build the other long module with many words in this description",
		"create the third long module with many words in this description",
		"we decided to keep the decision",
	)

	// A budget too small for everything: key points shed first, decisions kept.
	summary, err := c.Compress(msgs, 10)
	if err != nil {
		t.Fatalf("Compress() unexpected error: %v", err)
	}

	if len(summary.KeyPoints) != 0 {
		t.Errorf("KeyPoints = %v, want all dropped under tight budget", summary.KeyPoints)
	}
	if len(summary.Decisions) != 1 {
		t.Errorf("Decisions = %v, want preserved despite budget", summary.Decisions)
	}
}

func TestConversationCompressor_BudgetKeepsNewestKeyPoints(t *testing.T) {
	t.Parallel()

	c := newConversationCompressor(engine.Config{})

	msgs := messagesOf(
		"implement alpha with quite a few extra words to inflate the estimate",
		"implement beta with quite a few extra words to inflate the estimate",
		"implement gamma with quite a few extra words to inflate the estimate",
	)

	generous, err := c.Compress(msgs, 1000)
	if err != nil {
		t.Fatalf("Compress() unexpected error: %v", err)
	}
	if len(generous.KeyPoints) != 3 {
		t.Fatalf("generous budget: KeyPoints = %v, want 3", generous.KeyPoints)
	}

	tight, err := c.Compress(msgs, 30)
	if err != nil {
		t.Fatalf("Compress() unexpected error: %v", err)
	}
	if len(tight.KeyPoints) >= 3 || len(tight.KeyPoints) == 0 {
		t.Fatalf("tight budget: KeyPoints = %v, want a shorter non-empty tail", tight.KeyPoints)
	}
	// Oldest dropped first: the survivors are the newest entries.
	last := tight.KeyPoints[len(tight.KeyPoints)-1]
	if !strings.HasPrefix(last, "implement gamma") {
		t.Errorf("newest key point %q should survive budget shedding", last)
	}
}

func TestConversationCompressor_Rescore(t *testing.T) {
	t.Parallel()

	c := newConversationCompressor(engine.Config{})
	msgs := messagesOf("we decided to use X", "then implement Y")

	summary, err := c.Compress(msgs, 1000)
	if err != nil {
		t.Fatalf("Compress() unexpected error: %v", err)
	}

	summary.SummaryText = strings.Repeat("replacement synopsis text ", 200)
	rescored := c.Rescore(summary, msgs)

	if rescored.Ratio <= summary.Ratio {
		t.Errorf("Rescore() Ratio = %v, want > %v after the text grew", rescored.Ratio, summary.Ratio)
	}
	if len(rescored.Decisions) != len(summary.Decisions) || len(rescored.KeyPoints) != len(summary.KeyPoints) {
		t.Error("Rescore() must not touch structural fields")
	}

	empty := c.Rescore(engine.Summary{SummaryText: "anything"}, nil)
	if empty.Ratio != 1.0 {
		t.Errorf("Rescore() with no messages: Ratio = %v, want 1.0 by convention", empty.Ratio)
	}
}

func TestConversationCompressor_RatioUsesEstimator(t *testing.T) {
	t.Parallel()

	c := newConversationCompressor(engine.Config{})
	msgs := messagesOf(strings.Repeat("many words of conversation content here. ", 50))

	summary, err := c.Compress(msgs, 1000)
	if err != nil {
		t.Fatalf("Compress() unexpected error: %v", err)
	}
	if summary.Ratio <= 0 || summary.Ratio > 1 {
		t.Errorf("Ratio = %v, want in (0, 1] for a large compressible input", summary.Ratio)
	}
}
