package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"meli-trends/config"
	"meli-trends/utils"
)

// ExitOutputWrite is the process exit code when a snapshot or the report
// could not be written.
const ExitOutputWrite = 2

var (
	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:           "meli-trends",
	Short:         "MercadoLibre Venezuela trending products pipeline",
	Long:          "Collects the most asked-about MercadoLibre Venezuela listings, ranks them and renders a daily HTML report.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and exits with a non-zero code on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(exitCode(err))
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("data-dir", "", "Directory for raw and processed snapshots")
	rootCmd.PersistentFlags().String("docs-dir", "", "Directory for the rendered report")
	rootCmd.PersistentFlags().String("mirror", "", "Snapshot mirror: none, sqlite, postgres")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

func initConfig() {
	cfg = config.Load()

	if v, _ := rootCmd.PersistentFlags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("docs-dir"); v != "" {
		cfg.DocsDir = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("mirror"); v != "" {
		cfg.SnapshotMirror = v
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("debug"); v {
		cfg.Debug = true
	}

	logger = utils.NewLogger(cfg.Debug)
}

// outputWriteError marks a failure to write a pipeline artifact.
type outputWriteError struct {
	err error
}

func (e *outputWriteError) Error() string { return e.err.Error() }
func (e *outputWriteError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var werr *outputWriteError
	if errors.As(err, &werr) {
		return ExitOutputWrite
	}
	return 1
}
