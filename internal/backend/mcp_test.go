package backend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/flemzord/compactd/internal/backend"
)

// Compile-time interface checks.
var (
	_ backend.Summarizer = (*backend.MCPSummarizer)(nil)
	_ backend.Summarizer = (*backend.Mock)(nil)
)

// ---------------------------------------------------------------------------
// MCPSummarizer failure modes (no server spawned)
// ---------------------------------------------------------------------------

func TestMCPSummarizer_ConnectWithoutCommand(t *testing.T) {
	t.Parallel()

	m := backend.NewMCPSummarizer(backend.MCPConfig{}, nil)

	err := m.Connect(context.Background())
	if !errors.Is(err, backend.ErrUnavailable) {
		t.Fatalf("Connect() error = %v, want ErrUnavailable", err)
	}
}

func TestMCPSummarizer_CallsBeforeConnect(t *testing.T) {
	t.Parallel()

	m := backend.NewMCPSummarizer(backend.MCPConfig{Command: "/bin/true"}, nil)

	if _, err := m.SummarizeText(context.Background(), "text", 0.5); !errors.Is(err, backend.ErrUnavailable) {
		t.Errorf("SummarizeText() error = %v, want ErrUnavailable", err)
	}
	if _, err := m.SummarizeConversation(context.Background(), nil, 100); !errors.Is(err, backend.ErrUnavailable) {
		t.Errorf("SummarizeConversation() error = %v, want ErrUnavailable", err)
	}
}

func TestMCPSummarizer_CloseWithoutConnect(t *testing.T) {
	t.Parallel()

	m := backend.NewMCPSummarizer(backend.MCPConfig{}, nil)
	if err := m.Close(); err != nil {
		t.Errorf("Close() before Connect unexpected error: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Mock
// ---------------------------------------------------------------------------

func TestMock_ZeroValueConnects(t *testing.T) {
	t.Parallel()

	m := &backend.Mock{Response: "out"}

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() unexpected error: %v", err)
	}
	if !m.Connected() {
		t.Error("Connected() = false after Connect")
	}

	out, err := m.SummarizeText(context.Background(), "in", 0.4)
	if err != nil {
		t.Fatalf("SummarizeText() unexpected error: %v", err)
	}
	if out != "out" {
		t.Errorf("SummarizeText() = %q, want scripted response", out)
	}
	if m.TextCalls != 1 || m.LastRatio != 0.4 {
		t.Errorf("recorded (calls=%d, ratio=%v), want (1, 0.4)", m.TextCalls, m.LastRatio)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}
	if m.Connected() {
		t.Error("Connected() = true after Close")
	}
}

func TestMock_RequiresConnect(t *testing.T) {
	t.Parallel()

	m := &backend.Mock{Response: "out"}

	// Summarize before Connect: unavailable, like any Summarizer.
	if _, err := m.SummarizeText(context.Background(), "in", 0.5); !errors.Is(err, backend.ErrUnavailable) {
		t.Errorf("SummarizeText() before Connect error = %v, want ErrUnavailable", err)
	}

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() unexpected error: %v", err)
	}
	if _, err := m.SummarizeText(context.Background(), "in", 0.5); err != nil {
		t.Errorf("SummarizeText() after Connect unexpected error: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}
	if _, err := m.SummarizeConversation(context.Background(), nil, 10); !errors.Is(err, backend.ErrUnavailable) {
		t.Errorf("SummarizeConversation() after Close error = %v, want ErrUnavailable", err)
	}
}

func TestMock_ScriptedErrors(t *testing.T) {
	t.Parallel()

	m := &backend.Mock{
		ConnectErr:   backend.ErrUnavailable,
		SummarizeErr: backend.ErrUnavailable,
	}

	if err := m.Connect(context.Background()); !errors.Is(err, backend.ErrUnavailable) {
		t.Errorf("Connect() error = %v, want ErrUnavailable", err)
	}
	if _, err := m.SummarizeText(context.Background(), "in", 0.5); !errors.Is(err, backend.ErrUnavailable) {
		t.Errorf("SummarizeText() error = %v, want ErrUnavailable", err)
	}
	if _, err := m.SummarizeConversation(context.Background(), nil, 10); !errors.Is(err, backend.ErrUnavailable) {
		t.Errorf("SummarizeConversation() error = %v, want ErrUnavailable", err)
	}
	// Failed calls are still counted.
	if m.TextCalls != 1 || m.ConvCalls != 1 {
		t.Errorf("calls = (%d, %d), want (1, 1)", m.TextCalls, m.ConvCalls)
	}
}
