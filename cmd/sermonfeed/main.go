package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"sermonfeed/internal/config"
	"sermonfeed/internal/logging"
)

// Version will be set during build
var Version = "dev"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    config.Config
	logger *log.Logger
}

var (
	settingsPath string
	logLevel     string
	logFormat    string

	state app
)

var rootCmd = &cobra.Command{
	Use:           "sermonfeed",
	Short:         "Publish a church's YouTube sermons and live streams as a CSV catalog",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(settingsPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if logFormat != "" {
			cfg.LogFormat = logFormat
		}

		logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		state = app{cfg: cfg, logger: logger.WithPrefix("sermonfeed")}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Path to YAML settings file (default: SERMONFEED_SETTINGS)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text, json, logfmt")
	rootCmd.SetVersionTemplate("sermonfeed version {{.Version}}\n")

	rootCmd.AddCommand(ingestCmd, serveCmd, listCmd, resolveChannelCmd, hashTokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if state.logger != nil {
			state.logger.Error("command failed", "err", err)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
