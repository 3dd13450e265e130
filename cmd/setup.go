package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"vtrim/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up your configuration file
with source and output directories, ffmpeg settings and logging.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile, os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to vtrim setup!")
	fmt.Fprintln(out)

	cfg := config.Defaults()

	// Paths section
	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}

	// Engine section
	if err := promptEngine(prompter, cfg); err != nil {
		return err
	}

	// Logging section
	if err := promptLogging(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Save configuration
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	source, err := prompter.Input("Where are source videos stored?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if source == "" {
		return fmt.Errorf("source directory is required")
	}
	cfg.Paths.SourceDirectory = source

	trimmed, err := prompter.Input("Where should trimmed videos go?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if trimmed == "" {
		return fmt.Errorf("trimmed directory is required")
	}
	cfg.Paths.TrimmedDirectory = trimmed

	return nil
}

func promptEngine(prompter Prompter, cfg *config.Config) error {
	ffmpegPath, err := prompter.Input("Path to ffmpeg?", cfg.Engine.FFmpegPath)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if ffmpegPath != "" {
		cfg.Engine.FFmpegPath = ffmpegPath
	}

	ffprobePath, err := prompter.Input("Path to ffprobe?", cfg.Engine.FFprobePath)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if ffprobePath != "" {
		cfg.Engine.FFprobePath = ffprobePath
	}

	chunkSize, err := prompter.Input("Transfer chunk size in bytes?", strconv.Itoa(cfg.Engine.ChunkSizeBytes))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if chunkSize != "" {
		n, err := strconv.Atoi(chunkSize)
		if err != nil || n <= 0 {
			return fmt.Errorf("chunk size must be a positive integer, got %q", chunkSize)
		}
		cfg.Engine.ChunkSizeBytes = n
	}

	interval, err := prompter.Input("Wait between output checks?", cfg.Engine.VerifyInterval.String())
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", interval, err)
		}
		cfg.Engine.VerifyInterval = d
	}

	reject, err := prompter.Confirm("Reject overlapping trims?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if reject {
		cfg.Engine.Concurrency = "reject"
	}

	return nil
}

func promptLogging(prompter Prompter, cfg *config.Config) error {
	level, err := prompter.Input("Log level?", cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if level != "" {
		cfg.Logging.Level = level
	}

	jsonLogs, err := prompter.Confirm("Write logs as JSON?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if jsonLogs {
		cfg.Logging.Format = "json"
	}

	return nil
}
