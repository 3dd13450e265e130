//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vtrim/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	cfg        *config.Config
	loadErr    error
}

// SharedConfigContext is reset before each scenario via Before hook
var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		SharedConfigContext = &configContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config.yaml"),
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedConfigContext.tempDir != "" {
			os.RemoveAll(SharedConfigContext.tempDir)
		}
		SharedConfigContext = &configContext{}
		return c, nil
	})

	ctx.Step(`^a configuration file containing:$`, aConfigurationFileContaining)
	ctx.Step(`^no configuration file exists$`, noConfigurationFileExists)
	ctx.Step(`^I load the configuration$`, iLoadTheConfiguration)
	ctx.Step(`^I attempt to load the configuration$`, iAttemptToLoadTheConfiguration)
	ctx.Step(`^the trimmed directory should be "([^"]*)"$`, theTrimmedDirectoryShouldBe)
	ctx.Step(`^the chunk size should be (\d+) bytes$`, theChunkSizeShouldBeBytes)
	ctx.Step(`^the verify interval should be "([^"]*)"$`, theVerifyIntervalShouldBe)
	ctx.Step(`^the concurrency policy should be "([^"]*)"$`, theConcurrencyPolicyShouldBe)
	ctx.Step(`^I should receive an error about missing configuration$`, iShouldReceiveAnErrorAboutMissingConfiguration)
	ctx.Step(`^I should receive a configuration error containing "([^"]*)"$`, iShouldReceiveAConfigurationErrorContaining)
}

func aConfigurationFileContaining(doc *godog.DocString) error {
	c := SharedConfigContext
	return os.WriteFile(c.configPath, []byte(doc.Content), 0644)
}

func noConfigurationFileExists() error {
	c := SharedConfigContext
	if _, err := os.Stat(c.configPath); err == nil {
		return os.Remove(c.configPath)
	}
	return nil
}

func iLoadTheConfiguration() error {
	c := SharedConfigContext
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("unexpected error loading config: %w", err)
	}
	c.cfg = cfg
	return nil
}

func iAttemptToLoadTheConfiguration() error {
	c := SharedConfigContext
	c.cfg, c.loadErr = config.Load(c.configPath)
	return nil
}

func theTrimmedDirectoryShouldBe(expected string) error {
	c := SharedConfigContext
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	if c.cfg.Paths.TrimmedDirectory != expected {
		return fmt.Errorf("expected trimmed directory %q, got %q", expected, c.cfg.Paths.TrimmedDirectory)
	}
	return nil
}

func theChunkSizeShouldBeBytes(expected int) error {
	c := SharedConfigContext
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	if c.cfg.Engine.ChunkSizeBytes != expected {
		return fmt.Errorf("expected chunk size %d, got %d", expected, c.cfg.Engine.ChunkSizeBytes)
	}
	return nil
}

func theVerifyIntervalShouldBe(expected string) error {
	c := SharedConfigContext
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	want, err := time.ParseDuration(expected)
	if err != nil {
		return err
	}
	if c.cfg.Engine.VerifyInterval != want {
		return fmt.Errorf("expected verify interval %s, got %s", want, c.cfg.Engine.VerifyInterval)
	}
	return nil
}

func theConcurrencyPolicyShouldBe(expected string) error {
	c := SharedConfigContext
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	if c.cfg.Engine.Concurrency != expected {
		return fmt.Errorf("expected concurrency %q, got %q", expected, c.cfg.Engine.Concurrency)
	}
	return nil
}

func iShouldReceiveAnErrorAboutMissingConfiguration() error {
	c := SharedConfigContext
	if c.loadErr == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !errors.Is(c.loadErr, fs.ErrNotExist) {
		return fmt.Errorf("expected a missing file error, got: %v", c.loadErr)
	}
	return nil
}

func iShouldReceiveAConfigurationErrorContaining(expected string) error {
	c := SharedConfigContext
	if c.loadErr == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !strings.Contains(c.loadErr.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got: %v", expected, c.loadErr)
	}
	return nil
}
