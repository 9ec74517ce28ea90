package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/luki/sensordash/internal/app"
)

var (
	simulateTicks int
	simulateCSV   string
	simulatePNG   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Advance the session a number of ticks without waiting and print the window",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateTicks < 1 {
			return errors.New("--ticks must be at least 1")
		}

		_, err := getApp().Simulate(cmd.Context(), app.SimulateOptions{
			Ticks:   simulateTicks,
			CSVPath: simulateCSV,
			PNGPath: simulatePNG,
		}, cmd.OutOrStdout())
		return err
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simulateTicks, "ticks", 30, "Number of ticks to run")
	simulateCmd.Flags().StringVar(&simulateCSV, "csv", "", "Write the final window to this CSV file")
	simulateCmd.Flags().StringVar(&simulatePNG, "png", "", "Write the final window to this PNG chart")
}
