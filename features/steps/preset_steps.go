//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vtrim/cmd"
	"vtrim/infrastructure/config"

	"github.com/cucumber/godog"
)

type presetContext struct {
	tempDir    string
	configPath string
	cfg        *config.Config
	output     *bytes.Buffer
	err        error
}

// SharedPresetContext is reset before each scenario via Before hook
var SharedPresetContext *presetContext

func InitializePresetScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "preset-test-*")
		if err != nil {
			return c, err
		}
		SharedPresetContext = &presetContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config.yaml"),
			cfg:        config.Defaults(),
			output:     &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedPresetContext != nil {
			os.RemoveAll(SharedPresetContext.tempDir)
		}
		SharedPresetContext = nil
		return c, nil
	})

	ctx.Step(`^a saved preset "([^"]*)" from "([^"]*)" to "([^"]*)"$`, aSavedPresetFromTo)
	ctx.Step(`^I add a preset "([^"]*)" from "([^"]*)" to "([^"]*)"$`, iAddAPresetFromTo)
	ctx.Step(`^I update preset "([^"]*)" with start "([^"]*)" and end "([^"]*)"$`, iUpdatePresetWithStartAndEnd)
	ctx.Step(`^I remove preset "([^"]*)"$`, iRemovePreset)
	ctx.Step(`^I list presets$`, iListPresets)
	ctx.Step(`^the preset command should succeed$`, thePresetCommandShouldSucceed)
	ctx.Step(`^the preset command should fail with "([^"]*)"$`, thePresetCommandShouldFailWith)
	ctx.Step(`^the saved config should have preset "([^"]*)" from "([^"]*)" to "([^"]*)"$`, theSavedConfigShouldHavePresetFromTo)
	ctx.Step(`^the saved config should not have preset "([^"]*)"$`, theSavedConfigShouldNotHavePreset)
	ctx.Step(`^the preset output should contain "([^"]*)"$`, thePresetOutputShouldContain)
}

func aSavedPresetFromTo(key, start, end string) error {
	p := SharedPresetContext
	return config.NewConfigManager(p.cfg, p.configPath).AddPreset(key, start, end)
}

func iAddAPresetFromTo(key, start, end string) error {
	p := SharedPresetContext
	p.err = cmd.RunPresetAddWithDependencies(p.cfg, p.configPath, key, start, end, p.output)
	return nil
}

func iUpdatePresetWithStartAndEnd(key, start, end string) error {
	p := SharedPresetContext
	p.err = cmd.RunPresetUpdateWithDependencies(p.cfg, p.configPath, key, start, end, p.output)
	return nil
}

func iRemovePreset(key string) error {
	p := SharedPresetContext
	p.err = cmd.RunPresetRemoveWithDependencies(p.cfg, p.configPath, key, p.output)
	return nil
}

func iListPresets() error {
	p := SharedPresetContext
	p.err = cmd.RunPresetListWithDependencies(p.cfg, p.configPath, p.output)
	return nil
}

func thePresetCommandShouldSucceed() error {
	if err := SharedPresetContext.err; err != nil {
		return fmt.Errorf("unexpected error: %v", err)
	}
	return nil
}

func thePresetCommandShouldFailWith(expected string) error {
	err := SharedPresetContext.err
	if err == nil {
		return errors.New("expected an error but got none")
	}
	if !strings.Contains(err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got: %v", expected, err)
	}
	return nil
}

func theSavedConfigShouldHavePresetFromTo(key, start, end string) error {
	cfg, err := config.Load(SharedPresetContext.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	pc, ok := cfg.Presets[key]
	if !ok {
		return fmt.Errorf("preset %q not found in %v", key, cfg.Presets)
	}
	if pc.Start != start || pc.End != end {
		return fmt.Errorf("expected preset %q to be %s-%s, got %s-%s", key, start, end, pc.Start, pc.End)
	}
	return nil
}

func theSavedConfigShouldNotHavePreset(key string) error {
	cfg, err := config.Load(SharedPresetContext.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if _, ok := cfg.Presets[key]; ok {
		return fmt.Errorf("preset %q should have been removed", key)
	}
	return nil
}

func thePresetOutputShouldContain(expected string) error {
	out := SharedPresetContext.output.String()
	if !strings.Contains(out, expected) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", expected, out)
	}
	return nil
}
