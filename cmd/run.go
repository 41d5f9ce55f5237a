package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run collect, rank and render in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("=== MercadoLibre trends pipeline starting ===")
		logger.Info("Config: mode %s | top %d | pool %d | mirror %s",
			cfg.CollectorMode, cfg.TopN, cfg.PoolSize, cfg.SnapshotMirror)

		if err := collectStage(cmd.Context(), cfg, logger); err != nil {
			return err
		}
		if err := rankStage(cmd.Context(), cfg, logger, os.Stdout); err != nil {
			return err
		}
		if err := renderStage(cfg, logger, time.Now()); err != nil {
			return err
		}

		logger.Info("Done. Raw: %s | Processed: %s | Report: %s",
			cfg.RawPath(), cfg.ProcessedPath(), cfg.ReportPath())
		return nil
	},
}

func init() {
	runCmd.Flags().String("mode", "", "Collector mode: headless, static")
	runCmd.PreRun = func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetString("mode"); v != "" {
			cfg.CollectorMode = v
		}
	}
	rootCmd.AddCommand(runCmd)
}
