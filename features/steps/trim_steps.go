//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"vtrim/cmd"
	"vtrim/domain/video"
	"vtrim/infrastructure/config"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"
)

// mockFileChecker simulates file existence
type mockFileChecker struct {
	existingFiles map[string]bool
}

func (m *mockFileChecker) Exists(path string) bool {
	return m.existingFiles[path]
}

// memoryLoader serves sources from memory
type memoryLoader struct {
	sources map[string][]byte
}

func (l *memoryLoader) Load(path string) (video.SourceMedia, error) {
	data, ok := l.sources[path]
	if !ok {
		return video.SourceMedia{}, fmt.Errorf("failed to read source %s: not found", path)
	}
	return video.SourceMedia{Name: filepath.Base(path), MIMEType: "video/mp4", Data: data}, nil
}

// memoryWriter records written results
type memoryWriter struct {
	results map[string]*video.TrimResult
	paths   []string
}

func (w *memoryWriter) Write(path string, result *video.TrimResult) error {
	w.results[path] = result
	w.paths = append(w.paths, path)
	return nil
}

// stubProber reports fixed durations per path
type stubProber struct {
	durations map[string]float64
}

func (p *stubProber) Duration(ctx context.Context, path string) (float64, error) {
	d, ok := p.durations[path]
	if !ok {
		return 0, errors.New("ffprobe: no such file")
	}
	return d, nil
}

// trimContext holds test state for trim scenarios
type trimContext struct {
	cfg         *config.Config
	sourcePath  string
	engine      *memoryEngine
	fileChecker *mockFileChecker
	loader      *memoryLoader
	writer      *memoryWriter
	prober      *stubProber
	prompter    cmd.Prompter
	chunkSize   int
	output      *bytes.Buffer
	err         error
}

// SharedTrimContext is reset before each scenario via Before hook
var SharedTrimContext *trimContext

func getTrimContext() *trimContext {
	return SharedTrimContext
}

func InitializeTrimScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		cfg := config.Defaults()
		cfg.Engine.VerifyInterval = time.Millisecond
		SharedTrimContext = &trimContext{
			cfg:         cfg,
			engine:      newMemoryEngine(),
			fileChecker: &mockFileChecker{existingFiles: make(map[string]bool)},
			loader:      &memoryLoader{sources: make(map[string][]byte)},
			writer:      &memoryWriter{results: make(map[string]*video.TrimResult)},
			prober:      &stubProber{durations: make(map[string]float64)},
			output:      &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedTrimContext = nil
		return c, nil
	})

	ctx.Step(`^the trimmed output directory is "([^"]*)"$`, theTrimmedOutputDirectoryIs)
	ctx.Step(`^a source video at "([^"]*)"$`, aSourceVideoAt)
	ctx.Step(`^a source video at "([^"]*)" of (\d+) bytes$`, aSourceVideoAtOfBytes)
	ctx.Step(`^the source video lasts (\d+) seconds$`, theSourceVideoLastsSeconds)
	ctx.Step(`^no source video exists at "([^"]*)"$`, noSourceVideoExistsAt)
	ctx.Step(`^the trim chunk size is (\d+) bytes$`, theTrimChunkSizeIsBytes)
	ctx.Step(`^a preset "([^"]*)" from "([^"]*)" to "([^"]*)"$`, aPresetFromTo)
	ctx.Step(`^the engine does not list the trim output$`, theEngineDoesNotListTheTrimOutput)
	ctx.Step(`^the engine fails to run the trim$`, theEngineFailsToRunTheTrim)
	ctx.Step(`^I trim the video from "([^"]*)" to "([^"]*)"$`, iTrimTheVideoFromTo)
	ctx.Step(`^I trim the video from "([^"]*)" without an end time$`, iTrimTheVideoFromWithoutAnEndTime)
	ctx.Step(`^I trim the video with preset "([^"]*)"$`, iTrimTheVideoWithPreset)
	ctx.Step(`^I trim the video interactively answering "([^"]*)" and "([^"]*)"$`, iTrimTheVideoInteractivelyAnswering)
	ctx.Step(`^I attempt to trim with start time "([^"]*)"$`, iAttemptToTrimWithStartTime)
	ctx.Step(`^I attempt to trim from "([^"]*)" to "([^"]*)"$`, iAttemptToTrimFromTo)
	ctx.Step(`^I attempt to trim with preset "([^"]*)"$`, iAttemptToTrimWithPreset)
	ctx.Step(`^the output file should be "([^"]*)"$`, theOutputFileShouldBe)
	ctx.Step(`^the output file should hold the whole source$`, theOutputFileShouldHoldTheWholeSource)
	ctx.Step(`^ffmpeg should have been called with arguments:$`, ffmpegShouldHaveBeenCalledWithArguments)
	ctx.Step(`^(\d+) chunks should have been written to the engine$`, chunksShouldHaveBeenWrittenToTheEngine)
	ctx.Step(`^the engine storage should be empty$`, theEngineStorageShouldBeEmpty)
	ctx.Step(`^no engine calls should have been made$`, noEngineCallsShouldHaveBeenMade)
	ctx.Step(`^the printed output should contain "([^"]*)"$`, thePrintedOutputShouldContain)
	ctx.Step(`^I should receive an error about invalid timestamp format$`, iShouldReceiveAnErrorAboutInvalidTimestampFormat)
	ctx.Step(`^I should receive an error about end time before start time$`, iShouldReceiveAnErrorAboutEndTimeBeforeStartTime)
	ctx.Step(`^I should receive an error about missing source file$`, iShouldReceiveAnErrorAboutMissingSourceFile)
	ctx.Step(`^I should receive an error containing "([^"]*)"$`, iShouldReceiveAnErrorContaining)
	ctx.Step(`^the trim should fail with kind "([^"]*)"$`, theTrimShouldFailWithKind)
	ctx.Step(`^the trim should fail in step "([^"]*)"$`, theTrimShouldFailInStep)
}

func theTrimmedOutputDirectoryIs(dir string) error {
	t := getTrimContext()
	t.cfg.Paths.TrimmedDirectory = dir
	return nil
}

func aSourceVideoAt(path string) error {
	return aSourceVideoAtOfBytes(path, 1024)
}

func aSourceVideoAtOfBytes(path string, size int) error {
	t := getTrimContext()
	t.sourcePath = path
	t.fileChecker.existingFiles[path] = true

	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	t.loader.sources[path] = data
	return nil
}

func theSourceVideoLastsSeconds(seconds int) error {
	t := getTrimContext()
	t.prober.durations[t.sourcePath] = float64(seconds)
	return nil
}

func noSourceVideoExistsAt(path string) error {
	t := getTrimContext()
	t.sourcePath = path
	t.fileChecker.existingFiles[path] = false
	return nil
}

func theTrimChunkSizeIsBytes(size int) error {
	t := getTrimContext()
	t.chunkSize = size
	return nil
}

func aPresetFromTo(key, start, end string) error {
	t := getTrimContext()
	if t.cfg.Presets == nil {
		t.cfg.Presets = make(map[string]config.PresetConfig)
	}
	t.cfg.Presets[key] = config.PresetConfig{Start: start, End: end}
	return nil
}

func theEngineDoesNotListTheTrimOutput() error {
	getTrimContext().engine.hideOutput = true
	return nil
}

func theEngineFailsToRunTheTrim() error {
	getTrimContext().engine.runErr = errors.New("Invalid data found when processing input")
	return nil
}

func (t *trimContext) run(opts cmd.TrimOptions) error {
	opts.SourcePath = t.sourcePath
	opts.ChunkSize = t.chunkSize

	deps := cmd.TrimDependencies{
		Engine:      t.engine,
		Prober:      t.prober,
		FileChecker: t.fileChecker,
		Loader:      t.loader,
		Writer:      t.writer,
		Prompter:    t.prompter,
		Logger:      zerolog.Nop(),
	}

	t.err = cmd.RunTrimWithDependencies(context.Background(), t.cfg, "", deps, opts, t.output)
	return t.err
}

func iTrimTheVideoFromTo(start, end string) error {
	t := getTrimContext()
	if err := t.run(cmd.TrimOptions{StartTime: start, EndTime: end}); err != nil {
		return fmt.Errorf("unexpected error: %v", err)
	}
	return nil
}

func iTrimTheVideoFromWithoutAnEndTime(start string) error {
	t := getTrimContext()
	if err := t.run(cmd.TrimOptions{StartTime: start}); err != nil {
		return fmt.Errorf("unexpected error: %v", err)
	}
	return nil
}

func iTrimTheVideoWithPreset(key string) error {
	t := getTrimContext()
	if err := t.run(cmd.TrimOptions{Preset: key}); err != nil {
		return fmt.Errorf("unexpected error: %v", err)
	}
	return nil
}

func iTrimTheVideoInteractivelyAnswering(start, end string) error {
	t := getTrimContext()
	t.prompter = newScriptedPrompter(map[string]string{"Start time?": start, "End time?": end})
	if err := t.run(cmd.TrimOptions{Interactive: true}); err != nil {
		return fmt.Errorf("unexpected error: %v", err)
	}
	return nil
}

func iAttemptToTrimWithStartTime(start string) error {
	t := getTrimContext()
	t.run(cmd.TrimOptions{StartTime: start, EndTime: "01:00:00"})
	return nil
}

func iAttemptToTrimFromTo(start, end string) error {
	t := getTrimContext()
	t.run(cmd.TrimOptions{StartTime: start, EndTime: end})
	return nil
}

func iAttemptToTrimWithPreset(key string) error {
	t := getTrimContext()
	t.run(cmd.TrimOptions{Preset: key})
	return nil
}

func theOutputFileShouldBe(expected string) error {
	t := getTrimContext()
	if len(t.writer.paths) == 0 {
		return fmt.Errorf("no output was written")
	}
	if t.writer.paths[0] != expected {
		return fmt.Errorf("expected output path %q, got %q", expected, t.writer.paths[0])
	}
	return nil
}

func theOutputFileShouldHoldTheWholeSource() error {
	t := getTrimContext()
	if len(t.writer.paths) == 0 {
		return fmt.Errorf("no output was written")
	}
	result := t.writer.results[t.writer.paths[0]]
	if !bytes.Equal(result.Data, t.loader.sources[t.sourcePath]) {
		return fmt.Errorf("output (%d bytes) does not match the reassembled source (%d bytes)",
			len(result.Data), len(t.loader.sources[t.sourcePath]))
	}
	return nil
}

func ffmpegShouldHaveBeenCalledWithArguments(table *godog.Table) error {
	t := getTrimContext()
	args := t.engine.lastRun()
	if args == nil {
		return fmt.Errorf("ffmpeg was not called")
	}

	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		expectedArg := row.Cells[0].Value
		if !slices.Contains(args, expectedArg) {
			return fmt.Errorf("expected argument %q not found in ffmpeg call: %v", expectedArg, args)
		}
	}
	return nil
}

func chunksShouldHaveBeenWrittenToTheEngine(count int) error {
	t := getTrimContext()
	if got := len(t.engine.chunkWrites()); got != count {
		return fmt.Errorf("expected %d chunk writes, got %d", count, got)
	}
	return nil
}

func theEngineStorageShouldBeEmpty() error {
	t := getTrimContext()
	if names := t.engine.fileNames(); len(names) != 0 {
		return fmt.Errorf("expected empty engine storage, found %v", names)
	}
	return nil
}

func noEngineCallsShouldHaveBeenMade() error {
	t := getTrimContext()
	if n := t.engine.callCount(); n != 0 {
		return fmt.Errorf("expected no engine calls, got %d", n)
	}
	return nil
}

func thePrintedOutputShouldContain(expected string) error {
	t := getTrimContext()
	if !strings.Contains(t.output.String(), expected) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", expected, t.output.String())
	}
	return nil
}

func iShouldReceiveAnErrorAboutInvalidTimestampFormat() error {
	return iShouldReceiveAnErrorContaining("invalid timestamp format")
}

func iShouldReceiveAnErrorAboutEndTimeBeforeStartTime() error {
	return iShouldReceiveAnErrorContaining("must be after start time")
}

func iShouldReceiveAnErrorAboutMissingSourceFile() error {
	return iShouldReceiveAnErrorContaining("does not exist")
}

func iShouldReceiveAnErrorContaining(expected string) error {
	t := getTrimContext()
	if t.err == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !strings.Contains(t.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got: %v", expected, t.err)
	}
	return nil
}

func theTrimShouldFailWithKind(kind string) error {
	t := getTrimContext()
	if t.err == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if got := video.Kind(t.err); got != kind {
		return fmt.Errorf("expected error kind %q, got %q (%v)", kind, got, t.err)
	}
	return nil
}

func theTrimShouldFailInStep(step string) error {
	t := getTrimContext()
	var stepErr *video.StepError
	if !errors.As(t.err, &stepErr) {
		return fmt.Errorf("expected a step error, got: %v", t.err)
	}
	if stepErr.Step != step {
		return fmt.Errorf("expected failure in step %q, got %q", step, stepErr.Step)
	}
	return nil
}
