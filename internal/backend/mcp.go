package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flemzord/compactd/pkg/conversation"
)

// Tool names exposed by a compression MCP server.
const (
	toolCompressText         = "compress_text"
	toolCompressConversation = "compress_conversation"
)

// MCPConfig configures the stdio MCP summarizer.
type MCPConfig struct {
	// Command is the server executable to spawn.
	Command string
	// Args are passed to the server process.
	Args []string
	// Env is the extra environment for the server process (KEY=VALUE).
	Env []string
}

// MCPSummarizer talks to a compression MCP server over stdio. It satisfies
// Summarizer; every transport or protocol failure is reported as
// ErrUnavailable so the session can fall back.
type MCPSummarizer struct {
	config MCPConfig
	logger *slog.Logger

	mu     sync.Mutex
	client *client.Client
}

// Compile-time interface check.
var _ Summarizer = (*MCPSummarizer)(nil)

// NewMCPSummarizer creates an MCP summarizer. It does not spawn the server;
// call Connect for that. A nil logger discards output.
func NewMCPSummarizer(cfg MCPConfig, logger *slog.Logger) *MCPSummarizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MCPSummarizer{config: cfg, logger: logger}
}

// Connect spawns the MCP server process and performs the initialize
// handshake. Connect is idempotent: an established session is reused.
func (m *MCPSummarizer) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return nil
	}
	if m.config.Command == "" {
		return fmt.Errorf("%w: no server command configured", ErrUnavailable)
	}

	c, err := client.NewStdioMCPClient(m.config.Command, m.config.Env, m.config.Args...)
	if err != nil {
		return fmt.Errorf("%w: spawn %s: %v", ErrUnavailable, m.config.Command, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "compactd",
		Version: "1.0",
	}

	res, err := c.Initialize(ctx, initReq)
	if err != nil {
		_ = c.Close()
		return fmt.Errorf("%w: initialize: %v", ErrUnavailable, err)
	}

	m.logger.Info("mcp backend connected",
		"server", res.ServerInfo.Name,
		"version", res.ServerInfo.Version,
	)

	m.client = c
	return nil
}

// SummarizeText calls the compress_text tool and returns its text output.
func (m *MCPSummarizer) SummarizeText(ctx context.Context, text string, ratio float64) (string, error) {
	return m.callTool(ctx, toolCompressText, map[string]any{
		"text":  text,
		"ratio": ratio,
	})
}

// SummarizeConversation calls the compress_conversation tool and returns
// its text output.
func (m *MCPSummarizer) SummarizeConversation(ctx context.Context, messages []conversation.Message, maxTokens int) (string, error) {
	payload := make([]map[string]any, len(messages))
	for i, msg := range messages {
		payload[i] = map[string]any{
			"role":    string(msg.Role),
			"content": msg.Content,
		}
	}
	return m.callTool(ctx, toolCompressConversation, map[string]any{
		"messages":   payload,
		"max_tokens": maxTokens,
	})
}

// Close tears down the MCP session and the server process.
func (m *MCPSummarizer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil
	}
	err := m.client.Close()
	m.client = nil
	return err
}

// callTool invokes a tool and extracts the first text content block.
// Any error, error-flagged result, or response without text is reported
// as ErrUnavailable.
func (m *MCPSummarizer) callTool(ctx context.Context, name string, args map[string]any) (string, error) {
	m.mu.Lock()
	c := m.client
	m.mu.Unlock()

	if c == nil {
		return "", fmt.Errorf("%w: not connected", ErrUnavailable)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := c.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: call %s: %v", ErrUnavailable, name, err)
	}
	if res.IsError {
		return "", fmt.Errorf("%w: tool %s reported an error", ErrUnavailable, name)
	}

	for _, content := range res.Content {
		if tc, ok := content.(mcp.TextContent); ok && tc.Text != "" {
			return tc.Text, nil
		}
	}
	return "", fmt.Errorf("%w: tool %s returned no text content", ErrUnavailable, name)
}
