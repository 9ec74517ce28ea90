package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/luki/sensordash/internal/app"
)

var streamDuration time.Duration

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Run the session headless and log every reading",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Stream(cmd.Context(), app.StreamOptions{Duration: streamDuration})
	},
}

func init() {
	streamCmd.Flags().DurationVar(&streamDuration, "duration", 0, "Stop after this long (0 runs until interrupted)")
}
