// Command polity-linker searches a polity textbook for a concept and turns
// the passages it finds into AI-synthesized study notes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katakuxiko/polity-linker/internal/config"
	"github.com/katakuxiko/polity-linker/internal/logging"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "polity-linker",
	Short:         "Link polity concepts across a textbook and synthesize notes",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("corpus"); v != "" {
			c.CorpusPath = v
		}
		l, err := logging.New(c.LogLevel)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		cfg, logger = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML config file (default: $CONFIG_FILE)")
	rootCmd.PersistentFlags().String("corpus", "", "book text file (.txt or .pdf), overrides corpus_path")

	rootCmd.AddCommand(serveCmd, searchCmd, notesCmd, ingestCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
