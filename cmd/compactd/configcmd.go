package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/compactd/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(), configInitCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			fmt.Printf("Configuration OK (server %s)\n", cfg.Server.Addr)
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Interactively create a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := "compactd.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", path)
			}

			var (
				addr          = ":8321"
				backendCmd    string
				journalPath   string
				enableJournal = true
			)

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Listen address").
						Description("Address the HTTP gateway binds to.").
						Value(&addr),
					huh.NewInput().
						Title("Summarization backend command").
						Description("MCP server executable (leave empty for deterministic fallback only).").
						Value(&backendCmd),
					huh.NewConfirm().
						Title("Enable the operation journal?").
						Value(&enableJournal),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}

			if enableJournal {
				journalPath = defaultJournalPath()
			}

			cfg := config.Config{Version: "1"}
			cfg.Server.Addr = addr
			cfg.Backend.Command = backendCmd
			cfg.Journal.Path = journalPath
			cfg.Defaults()

			if err := config.Validate(&cfg); err != nil {
				return err
			}

			out, err := yaml.Marshal(&cfg)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, out, 0o600); err != nil {
				return err
			}

			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	return cmd
}

func defaultJournalPath() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "compactd", "journal.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "compactd", "data", "journal.db")
}
