package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"vtrim/infrastructure/config"
	"vtrim/infrastructure/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	cfg       *config.Config
	cfgErr    error
	logLevel  string
	logFormat string
	logger    = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "vtrim",
	Short: "Cut a time range out of a video without re-encoding",
	Long: `vtrim trims video files by moving them through an embedded ffmpeg engine:
the source is split into chunks, reassembled inside the engine's private
storage, cut with stream copy and read back.

Stream copy does not re-encode, so cuts snap to the keyframe at or before
the requested start time.

Example:
  vtrim trim --source holiday.mp4 --start 00:00:05 --end 00:00:15`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console or json)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	cfg, cfgErr = config.Load(cfgFile)
	if cfgErr != nil {
		// Config file is optional for some commands (like help)
		// Commands that need config will check and error appropriately
		cfg = nil
	}
}

func initLogger() {
	lc := config.Defaults().Logging
	if cfg != nil {
		lc = cfg.Logging
	}
	if logLevel != "" {
		lc.Level = logLevel
	}
	if logFormat != "" {
		lc.Format = logFormat
	}
	logger = logging.New(logging.Config{Level: lc.Level, Format: lc.Format})
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// effectiveConfig returns the loaded configuration, or defaults when no config
// file exists. A config file that exists but fails to load is an error.
func effectiveConfig() (*config.Config, error) {
	if cfg != nil {
		return cfg, nil
	}
	if cfgErr != nil && !errors.Is(cfgErr, fs.ErrNotExist) {
		return nil, cfgErr
	}
	return config.Defaults(), nil
}
