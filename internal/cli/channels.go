package cli

import (
	"github.com/spf13/cobra"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "Print the effective channel table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().PrintChannels(cmd.OutOrStdout())
	},
}
