package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/luki/sensordash/internal/app"
	"github.com/luki/sensordash/internal/config"
	"github.com/luki/sensordash/internal/logging"
)

// defaultTUILogFile receives logs while the dashboard owns the terminal.
const defaultTUILogFile = "sensordash.log"

var (
	cfgFile   string
	logLevel  string
	appHandle *app.App
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "sensordash",
	Short: "Live dashboard of simulated temperature, heart rate and sound readings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Monitor(cmd.Context())
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal: persistentPreRun refers to
	// rootCmd through ownsTerminal, which would form an initialization cycle.
	rootCmd.PersistentPreRunE = persistentPreRun

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")

	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(versionCmd)
}

func persistentPreRun(cmd *cobra.Command, args []string) error {
	if appHandle != nil {
		return nil
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if cfg.Logging.File == "" && ownsTerminal(cmd) {
		cfg.Logging.File = defaultTUILogFile
	}

	channels, err := config.LoadChannels(cfg.ChannelsFile)
	if err != nil {
		return err
	}

	logger, closer, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	logCloser = closer

	appHandle = app.NewApp(cfg, channels, logger)
	return nil
}

func ownsTerminal(cmd *cobra.Command) bool {
	return cmd == rootCmd || cmd == monitorCmd
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}
