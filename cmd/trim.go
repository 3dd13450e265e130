package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	appvideo "vtrim/application/video"
	"vtrim/domain/video"
	"vtrim/infrastructure/config"
	"vtrim/infrastructure/ffmpeg"
	"vtrim/infrastructure/filesystem"
	"vtrim/infrastructure/logging"
	"vtrim/infrastructure/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	trimSourcePath  string
	trimStartTime   string
	trimEndTime     string
	trimPreset      string
	trimOutputPath  string
	trimChunkSize   int
	trimInteractive bool
	trimTimeout     time.Duration
)

var trimCmd = &cobra.Command{
	Use:   "trim",
	Short: "Trim a video to a time range",
	Long: `Trim a video file to the given start and end times using stream copy.

Times accept HH:MM:SS[.fff], MM:SS or plain seconds. --end defaults to the
source duration. Because nothing is re-encoded, the output starts at the
keyframe at or before --start and may be slightly longer than requested.

The output defaults to <trimmed_directory>/<name>-trimmed.<ext>.

Examples:
  vtrim trim --source holiday.mp4 --start 00:00:05 --end 00:00:15
  vtrim trim --source holiday.mp4 --preset intro --output intro.mp4
  vtrim trim --source holiday.mp4 --interactive`,
	RunE: runTrim,
}

func init() {
	rootCmd.AddCommand(trimCmd)
	trimCmd.Flags().StringVar(&trimSourcePath, "source", "", "Path to source video file (required)")
	trimCmd.Flags().StringVar(&trimStartTime, "start", "", "Start time (default 00:00:00)")
	trimCmd.Flags().StringVar(&trimEndTime, "end", "", "End time (default: source duration)")
	trimCmd.Flags().StringVar(&trimPreset, "preset", "", "Use a named range from the config presets")
	trimCmd.Flags().StringVar(&trimOutputPath, "output", "", "Output file path")
	trimCmd.Flags().IntVar(&trimChunkSize, "chunk-size", 0, "Transfer chunk size in bytes (default from config)")
	trimCmd.Flags().BoolVar(&trimInteractive, "interactive", false, "Prompt for start and end times")
	trimCmd.Flags().DurationVar(&trimTimeout, "timeout", 0, "Abort the trim after this long (0 = no limit)")
	trimCmd.MarkFlagRequired("source")
	trimCmd.MarkFlagsMutuallyExclusive("preset", "start")
	trimCmd.MarkFlagsMutuallyExclusive("preset", "end")
}

func runTrim(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig()
	if err != nil {
		return err
	}

	engineLogger := logging.WithComponent(logger, "engine")
	engine := ffmpeg.NewEngine(
		ffmpeg.WithFFmpegPath(cfg.Engine.FFmpegPath),
		ffmpeg.WithBaseDir(cfg.Engine.WorkDirectory),
		ffmpeg.WithLogger(engineLogger),
	)
	defer closeEngine(engine, engineLogger)

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewPipelineMetrics(registry)
	if err != nil {
		return err
	}

	deps := TrimDependencies{
		Engine:      engine,
		Prober:      ffmpeg.NewProber(cfg.Engine.FFprobePath, nil),
		FileChecker: filesystem.NewChecker(),
		Loader:      filesystem.NewSourceLoader(),
		Writer:      filesystem.NewResultWriter(),
		Prompter:    DefaultPrompter,
		Recorder:    recorder,
		Logger:      logger,
	}

	opts := TrimOptions{
		SourcePath:  trimSourcePath,
		StartTime:   trimStartTime,
		EndTime:     trimEndTime,
		Preset:      trimPreset,
		OutputPath:  trimOutputPath,
		ChunkSize:   trimChunkSize,
		Interactive: trimInteractive,
		Timeout:     trimTimeout,
	}

	runErr := RunTrimWithDependencies(cmd.Context(), cfg, cfgFile, deps, opts, os.Stdout)

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile, registry); err != nil {
			logger.Warn().Err(err).Msg("metrics textfile not written")
		}
	}

	return runErr
}

// storageCloser is an engine whose private storage must be removed after use
type storageCloser interface {
	Dir() string
	Close() error
}

// closeEngine removes the engine's storage, logging a failure instead of returning it
func closeEngine(engine storageCloser, log zerolog.Logger) {
	dir := engine.Dir()
	if err := engine.Close(); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("engine storage not removed")
	}
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// DurationProber reads a media file's duration in seconds
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// SourceLoader reads a source file into memory
type SourceLoader interface {
	Load(path string) (video.SourceMedia, error)
}

// ResultWriter stores a trim result
type ResultWriter interface {
	Write(path string, result *video.TrimResult) error
}

// TrimDependencies holds the collaborators of the trim command
type TrimDependencies struct {
	Engine      video.Engine
	Prober      DurationProber // optional
	FileChecker video.FileChecker
	Loader      SourceLoader
	Writer      ResultWriter
	Prompter    Prompter // used with Interactive
	Recorder    appvideo.Recorder
	Logger      zerolog.Logger
}

// TrimOptions holds the trim command's flags
type TrimOptions struct {
	SourcePath  string
	StartTime   string
	EndTime     string
	Preset      string
	OutputPath  string
	ChunkSize   int
	Interactive bool
	Timeout     time.Duration
}

// RunTrimWithDependencies runs the trim command with injected dependencies (for testing)
func RunTrimWithDependencies(
	ctx context.Context,
	cfg *config.Config,
	configPath string,
	deps TrimDependencies,
	opts TrimOptions,
	output OutputWriter,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	sourcePath := resolveSourcePath(cfg, deps.FileChecker, opts.SourcePath)
	if !deps.FileChecker.Exists(sourcePath) {
		return fmt.Errorf("source file does not exist: %s", opts.SourcePath)
	}

	trimRange, err := resolveRange(ctx, cfg, configPath, deps, opts, sourcePath)
	if err != nil {
		return err
	}

	chunkSize := cfg.Engine.ChunkSizeBytes
	if opts.ChunkSize != 0 {
		chunkSize = opts.ChunkSize
	}
	if chunkSize <= 0 {
		return fmt.Errorf("%w: got %d", video.ErrInvalidChunkSize, chunkSize)
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = defaultOutputPath(cfg, sourcePath)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	pipelineOpts := []appvideo.Option{
		appvideo.WithChunkSize(chunkSize),
		appvideo.WithVerify(cfg.Engine.VerifyAttempts, cfg.Engine.VerifyInterval),
		appvideo.WithConcurrencyPolicy(appvideo.ConcurrencyPolicy(cfg.Engine.Concurrency)),
		appvideo.WithLogger(logging.WithComponent(deps.Logger, "pipeline")),
	}
	if deps.Recorder != nil {
		pipelineOpts = append(pipelineOpts, appvideo.WithRecorder(deps.Recorder))
	}
	pipeline := appvideo.NewPipeline(deps.Engine, pipelineOpts...)

	if err := pipeline.Init(ctx); err != nil {
		return fmt.Errorf("engine initialisation failed: %w", err)
	}

	source, err := deps.Loader.Load(sourcePath)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Trimming %s from %s to %s (%d chunks)...\n",
		source.Name, trimRange.StartTimestamp(), trimRange.EndTimestamp(),
		video.ChunkCount(source.Size(), chunkSize))

	result, err := pipeline.Trim(ctx, source, trimRange)
	if err != nil {
		return err
	}

	if err := deps.Writer.Write(outputPath, result); err != nil {
		return err
	}

	fmt.Fprintf(output, "Successfully created: %s (%d bytes)\n", outputPath, result.Size())

	if deps.Prober != nil {
		if got, err := deps.Prober.Duration(ctx, outputPath); err == nil {
			fmt.Fprintf(output, "Output duration: %s (requested %s; stream copy snaps to keyframes)\n",
				video.TimestampFromSeconds(got), video.TimestampFromSeconds(trimRange.Duration()))
		}
	}

	return nil
}

// resolveSourcePath looks a relative source up in the configured source directory
func resolveSourcePath(cfg *config.Config, checker video.FileChecker, path string) string {
	if filepath.IsAbs(path) || checker.Exists(path) || cfg.Paths.SourceDirectory == "" {
		return path
	}
	candidate := filepath.Join(cfg.Paths.SourceDirectory, path)
	if checker.Exists(candidate) {
		return candidate
	}
	return path
}

func resolveRange(ctx context.Context, cfg *config.Config, configPath string, deps TrimDependencies, opts TrimOptions, sourcePath string) (video.TrimRange, error) {
	start, end := opts.StartTime, opts.EndTime

	if opts.Preset != "" {
		preset, err := config.NewConfigManager(cfg, configPath).GetPreset(opts.Preset)
		if err != nil {
			return video.TrimRange{}, &ValidationError{
				Message:    err.Error(),
				Suggestion: config.SuggestAddPresetCommand(opts.Preset),
			}
		}
		start, end = preset.Start, preset.End
	}

	if start == "" {
		start = "00:00:00"
	}

	if end == "" && deps.Prober != nil {
		if seconds, err := deps.Prober.Duration(ctx, sourcePath); err == nil {
			end = formatProbed(seconds)
		} else {
			deps.Logger.Debug().Err(err).Msg("source duration unavailable")
		}
	}

	if opts.Interactive {
		if deps.Prompter == nil {
			return video.TrimRange{}, fmt.Errorf("interactive mode needs a prompter")
		}
		var err error
		if start, err = deps.Prompter.Input("Start time?", start); err != nil {
			return video.TrimRange{}, fmt.Errorf("prompt cancelled")
		}
		if end, err = deps.Prompter.Input("End time?", end); err != nil {
			return video.TrimRange{}, fmt.Errorf("prompt cancelled")
		}
	}

	if end == "" {
		return video.TrimRange{}, fmt.Errorf("end time is required (could not determine source duration)")
	}

	return video.ParseTrimRange(start, end)
}

func formatProbed(seconds float64) string {
	return video.TimestampFromSeconds(seconds).String()
}

func defaultOutputPath(cfg *config.Config, sourcePath string) string {
	dir := cfg.Paths.TrimmedDirectory
	if dir == "" {
		dir = filepath.Dir(sourcePath)
	}
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+"-trimmed"+ext)
}

// ValidationError contains details about a validation failure with suggestions
type ValidationError struct {
	Message    string
	Suggestion string
}

func (e *ValidationError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s\n\nTo fix this, run:\n  %s", e.Message, e.Suggestion)
	}
	return e.Message
}
