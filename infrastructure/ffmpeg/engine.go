package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"vtrim/domain/video"

	"github.com/rs/zerolog"
)

// Engine implements video.Engine with the ffmpeg binary. Its private storage
// is a directory created by Load and removed by Close; virtual file names are
// flat names inside that directory.
type Engine struct {
	ffmpegPath string
	baseDir    string
	runner     CommandRunner
	logger     zerolog.Logger

	mu  sync.RWMutex
	dir string
}

// EngineOption is a functional option for configuring Engine
type EngineOption func(*Engine)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) EngineOption {
	return func(e *Engine) {
		e.ffmpegPath = path
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) EngineOption {
	return func(e *Engine) {
		e.runner = runner
	}
}

// WithBaseDir sets the parent directory of the engine storage (default: OS temp dir)
func WithBaseDir(dir string) EngineOption {
	return func(e *Engine) {
		e.baseDir = dir
	}
}

// WithLogger sets the engine logger
func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a new FFmpeg-based engine. Call Load before use.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
		logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Load verifies ffmpeg and creates the private storage directory
func (e *Engine) Load(ctx context.Context) error {
	if e.Loaded() {
		return nil
	}

	if err := e.VerifyInstalled(ctx); err != nil {
		return err
	}

	if e.baseDir != "" {
		if err := os.MkdirAll(e.baseDir, 0o755); err != nil {
			return fmt.Errorf("failed to create engine base directory: %w", err)
		}
	}

	dir, err := os.MkdirTemp(e.baseDir, "vtrim-engine-")
	if err != nil {
		return fmt.Errorf("failed to create engine storage: %w", err)
	}

	e.mu.Lock()
	e.dir = dir
	e.mu.Unlock()

	e.logger.Debug().Str("dir", dir).Msg("engine storage ready")
	return nil
}

// Loaded reports whether Load has completed
func (e *Engine) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dir != ""
}

// Dir returns the storage directory, or "" before Load
func (e *Engine) Dir() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dir
}

// Close removes the storage directory and everything in it
func (e *Engine) Close() error {
	e.mu.Lock()
	dir := e.dir
	e.dir = ""
	e.mu.Unlock()

	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove engine storage: %w", err)
	}
	return nil
}

// path resolves a virtual file name inside the storage directory
func (e *Engine) path(name string) (string, error) {
	dir := e.Dir()
	if dir == "" {
		return "", video.ErrEngineNotReady
	}

	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid virtual file name %q", name)
	}

	return filepath.Join(dir, name), nil
}

// WriteFile implements video.Engine
func (e *Engine) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := e.path(name)
	if err != nil {
		return err
	}

	return os.WriteFile(p, data, 0o600)
}

// ReadFile implements video.Engine
func (e *Engine) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := e.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", video.ErrNotFound, name)
	}
	return data, err
}

// ReadDir implements video.Engine. Only the storage root ("/") can be listed.
func (e *Engine) ReadDir(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := e.Dir()
	if dir == "" {
		return nil, video.ErrEngineNotReady
	}

	switch path {
	case "", "/", ".":
	default:
		return nil, fmt.Errorf("%w: directory %s", video.ErrNotFound, path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Unlink implements video.Engine
func (e *Engine) Unlink(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := e.path(name)
	if err != nil {
		return err
	}

	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", video.ErrNotFound, name)
	}
	return err
}

// Run executes ffmpeg inside the storage directory, so virtual file names
// can be passed as plain relative paths.
func (e *Engine) Run(ctx context.Context, args ...string) error {
	dir := e.Dir()
	if dir == "" {
		return video.ErrEngineNotReady
	}

	if err := e.runner.Run(ctx, dir, e.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (e *Engine) VerifyInstalled(ctx context.Context) error {
	_, err := e.runner.Output(ctx, e.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Engine implements video.Engine
var _ video.Engine = (*Engine)(nil)
