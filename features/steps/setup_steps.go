//go:build integration

package steps

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"vtrim/cmd"
	"vtrim/infrastructure/config"

	"github.com/cucumber/godog"
)

const overwritePrompt = "config.yaml already exists. Overwrite?"

// scriptedPrompter answers prompts by their exact text. Unscripted prompts get
// their default value.
type scriptedPrompter struct {
	answers map[string]string
	asked   []string
}

func newScriptedPrompter(answers map[string]string) *scriptedPrompter {
	return &scriptedPrompter{answers: answers}
}

func (p *scriptedPrompter) Input(message string, defaultValue string) (string, error) {
	p.asked = append(p.asked, message)
	if answer, ok := p.answers[message]; ok {
		return answer, nil
	}
	if defaultValue == "" {
		return "", fmt.Errorf("no answer scripted for %q", message)
	}
	return defaultValue, nil
}

func (p *scriptedPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	p.asked = append(p.asked, message)
	if answer, ok := p.answers[message]; ok {
		return strings.EqualFold(answer, "y"), nil
	}
	return defaultValue, nil
}

// unasked returns scripted prompts that were never shown
func (p *scriptedPrompter) unasked() []string {
	var out []string
	for message := range p.answers {
		if !slices.Contains(p.asked, message) {
			out = append(out, message)
		}
	}
	slices.Sort(out)
	return out
}

type setupContext struct {
	tempDir         string
	configPath      string
	originalContent string
	prompter        *scriptedPrompter
	err             error
}

// SharedSetupContext is reset before each scenario via Before hook
var SharedSetupContext *setupContext

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		SharedSetupContext = &setupContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config", "config.yaml"),
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedSetupContext != nil {
			os.RemoveAll(SharedSetupContext.tempDir)
		}
		SharedSetupContext = nil
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup command with inputs:$`, iRunTheSetupCommandWithInputs)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, iRunTheSetupCommandWithConfirmation)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)" and inputs:$`, iRunTheSetupCommandWithConfirmationAndInputs)
	ctx.Step(`^I attempt to run the setup command with inputs:$`, iAttemptToRunTheSetupCommandWithInputs)
	ctx.Step(`^a config file should exist$`, aConfigFileShouldExist)
	ctx.Step(`^the config should have source_directory "([^"]*)"$`, theConfigShouldHaveSourceDirectory)
	ctx.Step(`^the config should have trimmed_directory "([^"]*)"$`, theConfigShouldHaveTrimmedDirectory)
	ctx.Step(`^the config should have chunk_size_bytes (\d+)$`, theConfigShouldHaveChunkSizeBytes)
	ctx.Step(`^the config should have concurrency "([^"]*)"$`, theConfigShouldHaveConcurrency)
	ctx.Step(`^the config should have log format "([^"]*)"$`, theConfigShouldHaveLogFormat)
	ctx.Step(`^the setup should fail with "([^"]*)"$`, theSetupShouldFailWith)
	ctx.Step(`^the existing config should be unchanged$`, theExistingConfigShouldBeUnchanged)
}

func noConfigFileExistsForSetup() error {
	return os.MkdirAll(filepath.Dir(SharedSetupContext.configPath), 0755)
}

func aConfigFileAlreadyExistsForSetup() error {
	s := SharedSetupContext
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}

	s.originalContent = `paths:
  source_directory: "/original/source"
  trimmed_directory: "/original/trimmed"
engine:
  ffmpeg_path: "ffmpeg"
  chunk_size_bytes: 1048576
`
	return os.WriteFile(s.configPath, []byte(s.originalContent), 0644)
}

// answersFromTable reads a | prompt | value | table
func answersFromTable(table *godog.Table) map[string]string {
	answers := make(map[string]string)
	if table == nil {
		return answers
	}
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		answers[row.Cells[0].Value] = row.Cells[1].Value
	}
	return answers
}

func (s *setupContext) run(answers map[string]string) error {
	s.prompter = newScriptedPrompter(answers)
	s.err = cmd.RunSetupWithPrompter(s.prompter, s.configPath, io.Discard)
	if s.err != nil {
		return s.err
	}
	if unasked := s.prompter.unasked(); len(unasked) > 0 {
		return fmt.Errorf("setup never asked %q", unasked)
	}
	return nil
}

func iRunTheSetupCommandWithInputs(table *godog.Table) error {
	if err := SharedSetupContext.run(answersFromTable(table)); err != nil {
		return fmt.Errorf("setup command failed: %w", err)
	}
	return nil
}

func iRunTheSetupCommandWithConfirmation(confirmation string) error {
	return iRunTheSetupCommandWithConfirmationAndInputs(confirmation, nil)
}

func iRunTheSetupCommandWithConfirmationAndInputs(confirmation string, table *godog.Table) error {
	answers := answersFromTable(table)
	answers[overwritePrompt] = confirmation
	if err := SharedSetupContext.run(answers); err != nil {
		return fmt.Errorf("setup command failed: %w", err)
	}
	return nil
}

func iAttemptToRunTheSetupCommandWithInputs(table *godog.Table) error {
	SharedSetupContext.run(answersFromTable(table))
	return nil
}

func aConfigFileShouldExist() error {
	if _, err := os.Stat(SharedSetupContext.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist at %s", SharedSetupContext.configPath)
	}
	return nil
}

func loadSetupConfig() (*config.Config, error) {
	cfg, err := config.Load(SharedSetupContext.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func theConfigShouldHaveSourceDirectory(expected string) error {
	cfg, err := loadSetupConfig()
	if err != nil {
		return err
	}
	if cfg.Paths.SourceDirectory != expected {
		return fmt.Errorf("expected source_directory %q, got %q", expected, cfg.Paths.SourceDirectory)
	}
	return nil
}

func theConfigShouldHaveTrimmedDirectory(expected string) error {
	cfg, err := loadSetupConfig()
	if err != nil {
		return err
	}
	if cfg.Paths.TrimmedDirectory != expected {
		return fmt.Errorf("expected trimmed_directory %q, got %q", expected, cfg.Paths.TrimmedDirectory)
	}
	return nil
}

func theConfigShouldHaveChunkSizeBytes(expected int) error {
	cfg, err := loadSetupConfig()
	if err != nil {
		return err
	}
	if cfg.Engine.ChunkSizeBytes != expected {
		return fmt.Errorf("expected chunk_size_bytes %d, got %d", expected, cfg.Engine.ChunkSizeBytes)
	}
	return nil
}

func theConfigShouldHaveConcurrency(expected string) error {
	cfg, err := loadSetupConfig()
	if err != nil {
		return err
	}
	if cfg.Engine.Concurrency != expected {
		return fmt.Errorf("expected concurrency %q, got %q", expected, cfg.Engine.Concurrency)
	}
	return nil
}

func theConfigShouldHaveLogFormat(expected string) error {
	cfg, err := loadSetupConfig()
	if err != nil {
		return err
	}
	if cfg.Logging.Format != expected {
		return fmt.Errorf("expected log format %q, got %q", expected, cfg.Logging.Format)
	}
	return nil
}

func theSetupShouldFailWith(expected string) error {
	err := SharedSetupContext.err
	if err == nil {
		return fmt.Errorf("expected setup to fail")
	}
	if !strings.Contains(err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got: %v", expected, err)
	}
	return nil
}

func theExistingConfigShouldBeUnchanged() error {
	s := SharedSetupContext
	content, err := os.ReadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if string(content) != s.originalContent {
		return fmt.Errorf("config content was changed")
	}
	return nil
}
