// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for compactd.
package config

import "time"

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	Server    ServerConfig    `yaml:"server"`
	Engine    EngineConfig    `yaml:"engine"`
	Backend   BackendConfig   `yaml:"backend"`
	Journal   JournalConfig   `yaml:"journal"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig configures the HTTP gateway.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr"`

	// RequestTimeout bounds one request end to end.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// EngineConfig exposes the compression engine knobs.
type EngineConfig struct {
	// TokensPerWord is the subword expansion factor for token estimation.
	TokensPerWord float64 `yaml:"tokens_per_word"`

	// ProtectedWindow is the number of most-recent messages exempt from
	// compression suggestions.
	ProtectedWindow int `yaml:"protected_window"`

	// MinSuggestLength is the content size gate (bytes) for suggestions
	// at the baseline threshold.
	MinSuggestLength int `yaml:"min_suggest_length"`

	// PreviewLength is the snippet truncation length for summaries.
	PreviewLength int `yaml:"preview_length"`

	// MaxKeyPoints and MaxDecisions cap the summary sections.
	MaxKeyPoints int `yaml:"max_key_points"`
	MaxDecisions int `yaml:"max_decisions"`

	// SummaryRatio is the default whole-conversation target ratio.
	SummaryRatio float64 `yaml:"summary_ratio"`
}

// BackendConfig configures the optional MCP summarization backend.
// An empty command means no backend: the daemon runs in fallback mode.
type BackendConfig struct {
	// Command is the MCP server executable, spawned over stdio.
	Command string `yaml:"command"`

	// Args are passed to the server process.
	Args []string `yaml:"args,omitempty"`

	// Env is extra environment for the server process (KEY=VALUE).
	Env []string `yaml:"env,omitempty"`

	// Timeout bounds a single backend delegation before falling back.
	Timeout time.Duration `yaml:"timeout"`
}

// JournalConfig configures the SQLite operation journal.
// An empty path disables journaling.
type JournalConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path"`

	// Retention is how long entries are kept before pruning.
	Retention time.Duration `yaml:"retention"`

	// PruneSchedule is the cron expression for the prune job.
	PruneSchedule string `yaml:"prune_schedule"`
}

// SchedulerConfig configures the maintenance scheduler.
type SchedulerConfig struct {
	// ReconnectSchedule is the cron expression for backend reconnection
	// attempts while in fallback mode.
	ReconnectSchedule string `yaml:"reconnect_schedule"`
}

// TelemetryConfig configures tracing.
type TelemetryConfig struct {
	// Endpoint is the OTLP/HTTP collector endpoint (host:port).
	// Empty disables tracing.
	Endpoint string `yaml:"endpoint"`
}

// Defaults fills zero-valued fields with working defaults.
func (c *Config) Defaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8321"
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 30 * time.Second
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 10 * time.Second
	}
	if c.Journal.Retention == 0 {
		c.Journal.Retention = 30 * 24 * time.Hour
	}
	if c.Journal.PruneSchedule == "" {
		c.Journal.PruneSchedule = "0 * * * *"
	}
	if c.Scheduler.ReconnectSchedule == "" {
		c.Scheduler.ReconnectSchedule = "* * * * *"
	}
}
