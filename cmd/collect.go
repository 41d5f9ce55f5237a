package cmd

import (
	"github.com/spf13/cobra"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetch the listing page and write the raw snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return collectStage(cmd.Context(), cfg, logger)
	},
}

func init() {
	collectCmd.Flags().String("mode", "", "Collector mode: headless, static")
	collectCmd.PreRun = func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetString("mode"); v != "" {
			cfg.CollectorMode = v
		}
	}
	rootCmd.AddCommand(collectCmd)
}
