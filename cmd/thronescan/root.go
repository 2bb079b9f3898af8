package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	tslog "github.com/nao1215/thronescan/internal/log"
)

// NewRootCmd creates the root command for thronescan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thronescan",
		Short: "Turn leaderboard screenshots into validated player records",
		Long: `thronescan extracts end-of-match leaderboards from screenshots.

Each screenshot is read with Tesseract. Every leaderboard row becomes a
player record with a team, a class taken from the class registry and five
stats. Records that break the per-class sanity rules are reported so that
misread numbers can be fixed before the data is used.

A .env file in the current directory is loaded before any command runs,
which is a convenient place to set TESSDATA_PREFIX.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := godotenv.Load(); err != nil {
				slog.Debug("no .env file loaded", "error", err)
			}
			return nil
		},
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write log records to stderr as JSON")

	cmd.AddCommand(NewProcessCmd())
	cmd.AddCommand(NewClassifyCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger creates the stderr logger of a command run.
func newLogger(w io.Writer, verbose, jsonFormat bool) *slog.Logger {
	if jsonFormat {
		return tslog.NewJSONLogger(w, verbose)
	}
	return tslog.NewLogger(w, verbose)
}
