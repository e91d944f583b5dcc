package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate checks structural constraints beyond what YAML parsing catches.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (want \"1\")", cfg.Version))
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.Server.Addr); err != nil {
		errs = append(errs, fmt.Errorf("config: invalid server addr %q: %w", cfg.Server.Addr, err))
	}

	if cfg.Engine.TokensPerWord < 0 {
		errs = append(errs, fmt.Errorf("config: tokens_per_word must be >= 0, got %g", cfg.Engine.TokensPerWord))
	}
	if cfg.Engine.ProtectedWindow < 0 {
		errs = append(errs, fmt.Errorf("config: protected_window must be >= 0, got %d", cfg.Engine.ProtectedWindow))
	}
	if cfg.Engine.SummaryRatio < 0 || cfg.Engine.SummaryRatio > 1 {
		errs = append(errs, fmt.Errorf("config: summary_ratio must be in [0, 1], got %g", cfg.Engine.SummaryRatio))
	}

	if cfg.Backend.Command == "" && len(cfg.Backend.Args) > 0 {
		errs = append(errs, errors.New("config: backend args set without a command"))
	}

	if cfg.Journal.Retention < 0 {
		errs = append(errs, errors.New("config: journal retention must be >= 0"))
	}

	return errors.Join(errs...)
}
