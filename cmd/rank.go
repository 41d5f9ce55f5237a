package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank the raw snapshot and write the processed snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return rankStage(cmd.Context(), cfg, logger, os.Stdout)
	},
}

func init() {
	rankCmd.Flags().Int("top", 0, "Number of listings to keep")
	rankCmd.PreRun = func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetInt("top"); v > 0 {
			cfg.TopN = v
		}
	}
	rootCmd.AddCommand(rankCmd)
}
