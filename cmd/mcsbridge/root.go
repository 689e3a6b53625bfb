package main

import (
	"os"

	"github.com/cwbudde/mcsbridge/internal/config"
	"github.com/cwbudde/mcsbridge/internal/logging"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logFormat  string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "mcsbridge",
	Short: "Multilevel coordinate search from the command line",
	Long: `mcsbridge drives the same dispatcher that backs the libmcs shared library.
It runs test objectives, lists the supported problem shapes and manages
recorded runs.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Logs go to stderr so result tables stay clean on stdout
		logging.Setup(logLevel, logFormat, os.Stderr)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config (defaults to built-in settings)")
}

// loadConfig reads --config, falling back to the built-in configuration.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(configPath)
}
