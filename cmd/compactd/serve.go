package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/flemzord/compactd/internal/backend"
	"github.com/flemzord/compactd/internal/config"
	"github.com/flemzord/compactd/internal/engine"
	"github.com/flemzord/compactd/internal/gateway"
	"github.com/flemzord/compactd/internal/journal"
	"github.com/flemzord/compactd/internal/sched"
	"github.com/flemzord/compactd/internal/session"
	"github.com/flemzord/compactd/internal/telemetry"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the compression daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			if cfgPath == "" {
				resolved, err := resolveConfigPath()
				if err != nil {
					return err
				}
				cfgPath = resolved
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfgPath)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

// runServe wires the daemon and blocks until ctx is cancelled. It is also
// the entry point used when running under a system service manager.
func runServe(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.Endpoint, version)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithBackendTimeout(cfg.Backend.Timeout),
	}

	var jnl *journal.Journal
	if cfg.Journal.Path != "" {
		jnl, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer jnl.Close()
		opts = append(opts, session.WithJournal(jnl))
	}

	backendConfigured := cfg.Backend.Command != ""
	if backendConfigured {
		mcp := backend.NewMCPSummarizer(backend.MCPConfig{
			Command: cfg.Backend.Command,
			Args:    cfg.Backend.Args,
			Env:     cfg.Backend.Env,
		}, logger)
		opts = append(opts, session.WithBackend(mcp))
	}

	sess := session.New(engineConfig(cfg), opts...)
	defer sess.Close()

	sess.Connect(ctx)

	scheduler := sched.NewScheduler(logger)
	if backendConfigured {
		if err := scheduler.RegisterJob(&sched.ReconnectJob{
			Session:      sess,
			Logger:       logger,
			ScheduleExpr: cfg.Scheduler.ReconnectSchedule,
		}); err != nil {
			return err
		}
	}
	if jnl != nil {
		if err := scheduler.RegisterJob(&sched.JournalPruneJob{
			Journal:      jnl,
			Retention:    cfg.Journal.Retention,
			Logger:       logger,
			ScheduleExpr: cfg.Journal.PruneSchedule,
		}); err != nil {
			return err
		}
	}
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = scheduler.Stop(stopCtx)
	}()

	gw := gateway.New(gateway.Config{
		Addr:           cfg.Server.Addr,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, sess, gateway.WithLogger(logger))

	errCh := make(chan error, 1)
	go func() { errCh <- gw.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return gw.Shutdown(shutdownCtx)
}

// engineConfig maps the YAML engine section to the engine's config.
func engineConfig(cfg *config.Config) engine.Config {
	return engine.Config{
		TokensPerWord:    cfg.Engine.TokensPerWord,
		ProtectedWindow:  cfg.Engine.ProtectedWindow,
		MinSuggestLength: cfg.Engine.MinSuggestLength,
		PreviewLength:    cfg.Engine.PreviewLength,
		MaxKeyPoints:     cfg.Engine.MaxKeyPoints,
		MaxDecisions:     cfg.Engine.MaxDecisions,
		SummaryRatio:     cfg.Engine.SummaryRatio,
	}
}
