package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/flemzord/compactd/internal/engine"
)

func compressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compress",
		Short: "Compress text from stdin using the deterministic strategy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ratio, _ := cmd.Flags().GetFloat64("ratio")

			text, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}

			compressor := engine.NewTextCompressor(engine.Config{})
			result, err := compressor.Compress(string(text), ratio)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().Float64P("ratio", "r", 0.5, "Target compression ratio in (0, 1]")
	return cmd
}
