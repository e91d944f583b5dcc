package backend

import (
	"context"
	"sync"

	"github.com/flemzord/compactd/pkg/conversation"
)

// Mock is a scripted Summarizer for tests. Zero value is usable: it
// connects successfully and echoes a fixed response. Like any Summarizer,
// the summarize methods return ErrUnavailable until Connect succeeds. Set
// the error fields to exercise failure paths.
type Mock struct {
	mu sync.Mutex

	// Response is returned by both summarize methods when no error is set.
	Response string

	// ConnectErr, SummarizeErr force the corresponding calls to fail.
	ConnectErr   error
	SummarizeErr error

	connected    bool
	TextCalls    int
	ConvCalls    int
	LastRatio    float64
	LastMaxToken int
}

// Compile-time interface check.
var _ Summarizer = (*Mock)(nil)

// Connect records the attempt and returns ConnectErr.
func (m *Mock) Connect(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	m.connected = true
	return nil
}

// Connected reports whether Connect succeeded.
func (m *Mock) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// SummarizeText returns the scripted response. The call is counted even
// when it fails.
func (m *Mock) SummarizeText(_ context.Context, _ string, ratio float64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TextCalls++
	m.LastRatio = ratio
	if !m.connected {
		return "", ErrUnavailable
	}
	if m.SummarizeErr != nil {
		return "", m.SummarizeErr
	}
	return m.Response, nil
}

// SummarizeConversation returns the scripted response. The call is counted
// even when it fails.
func (m *Mock) SummarizeConversation(_ context.Context, _ []conversation.Message, maxTokens int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConvCalls++
	m.LastMaxToken = maxTokens
	if !m.connected {
		return "", ErrUnavailable
	}
	if m.SummarizeErr != nil {
		return "", m.SummarizeErr
	}
	return m.Response, nil
}

// Close marks the mock disconnected.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}
