package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the processed snapshot into the HTML report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return renderStage(cfg, logger, time.Now())
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
