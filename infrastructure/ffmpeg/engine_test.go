package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vtrim/domain/video"
)

// mockRunner records calls and returns canned results
type mockRunner struct {
	runCalls    []runCall
	runErr      error
	outputErr   error
	output      []byte
	outputCalls [][]string
}

type runCall struct {
	dir  string
	name string
	args []string
}

func (m *mockRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	m.runCalls = append(m.runCalls, runCall{dir: dir, name: name, args: args})
	return m.runErr
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.outputCalls = append(m.outputCalls, append([]string{name}, args...))
	return m.output, m.outputErr
}

func loadedEngine(t *testing.T, runner *mockRunner) *Engine {
	t.Helper()
	e := NewEngine(WithCommandRunner(runner), WithBaseDir(t.TempDir()), WithFFmpegPath("/opt/ffmpeg"))
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestEngine_Load(t *testing.T) {
	runner := &mockRunner{}
	e := NewEngine(WithCommandRunner(runner), WithBaseDir(t.TempDir()))

	if e.Loaded() {
		t.Fatal("engine must not be loaded before Load")
	}
	if err := e.WriteFile(context.Background(), "a", nil); !errors.Is(err, video.ErrEngineNotReady) {
		t.Errorf("WriteFile() before Load error = %v, want ErrEngineNotReady", err)
	}

	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	defer e.Close()

	if !e.Loaded() {
		t.Error("engine should be loaded")
	}
	if len(runner.outputCalls) != 1 || runner.outputCalls[0][1] != "-version" {
		t.Errorf("expected ffmpeg -version check, got %v", runner.outputCalls)
	}
	if info, err := os.Stat(e.Dir()); err != nil || !info.IsDir() {
		t.Errorf("storage directory missing: %v", err)
	}
}

func TestEngine_LoadFailsWithoutFFmpeg(t *testing.T) {
	runner := &mockRunner{outputErr: errors.New("executable file not found in $PATH")}
	e := NewEngine(WithCommandRunner(runner), WithBaseDir(t.TempDir()))

	err := e.Load(context.Background())
	if err == nil {
		t.Fatal("Load() expected error")
	}
	if e.Loaded() {
		t.Error("engine must not report loaded after a failed Load")
	}
}

func TestEngine_FileOperations(t *testing.T) {
	ctx := context.Background()
	e := loadedEngine(t, &mockRunner{})

	if err := e.WriteFile(ctx, "b.mp4", []byte("bbb")); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if err := e.WriteFile(ctx, "a.mp4", []byte("aa")); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	names, err := e.ReadDir(ctx, "/")
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(names) != 2 || names[0] != "a.mp4" || names[1] != "b.mp4" {
		t.Errorf("ReadDir() = %v, want [a.mp4 b.mp4]", names)
	}

	data, err := e.ReadFile(ctx, "b.mp4")
	if err != nil || string(data) != "bbb" {
		t.Errorf("ReadFile() = %q, %v", data, err)
	}

	if err := e.Unlink(ctx, "b.mp4"); err != nil {
		t.Fatalf("Unlink() error: %v", err)
	}
	if _, err := e.ReadFile(ctx, "b.mp4"); !errors.Is(err, video.ErrNotFound) {
		t.Errorf("ReadFile() after Unlink error = %v, want ErrNotFound", err)
	}
	if err := e.Unlink(ctx, "b.mp4"); !errors.Is(err, video.ErrNotFound) {
		t.Errorf("Unlink() twice error = %v, want ErrNotFound", err)
	}
}

func TestEngine_RejectsPathNames(t *testing.T) {
	ctx := context.Background()
	e := loadedEngine(t, &mockRunner{})

	for _, name := range []string{"", "..", "../escape", "sub/file", `sub\file`} {
		if err := e.WriteFile(ctx, name, []byte("x")); err == nil {
			t.Errorf("WriteFile(%q) expected error", name)
		}
	}

	if _, err := os.Stat(filepath.Join(filepath.Dir(e.Dir()), "escape")); err == nil {
		t.Error("file escaped engine storage")
	}
}

func TestEngine_ReadDirOnlyRoot(t *testing.T) {
	e := loadedEngine(t, &mockRunner{})

	if _, err := e.ReadDir(context.Background(), "/tmp"); !errors.Is(err, video.ErrNotFound) {
		t.Errorf("ReadDir(/tmp) error = %v, want ErrNotFound", err)
	}
}

func TestEngine_Run(t *testing.T) {
	runner := &mockRunner{}
	e := loadedEngine(t, runner)

	args := []string{"-ss", "5", "-i", "in.mp4", "-t", "10", "-c", "copy", "out.mp4"}
	if err := e.Run(context.Background(), args...); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(runner.runCalls) != 1 {
		t.Fatalf("expected 1 run call, got %d", len(runner.runCalls))
	}
	call := runner.runCalls[0]
	if call.dir != e.Dir() {
		t.Errorf("Run dir = %q, want storage dir %q", call.dir, e.Dir())
	}
	if call.name != "/opt/ffmpeg" {
		t.Errorf("Run name = %q, want /opt/ffmpeg", call.name)
	}
	if len(call.args) != len(args) {
		t.Errorf("Run args = %v, want %v", call.args, args)
	}
}

func TestEngine_RunFailure(t *testing.T) {
	runner := &mockRunner{runErr: errors.New("exit status 1")}
	e := loadedEngine(t, runner)

	err := e.Run(context.Background(), "-i", "in.mp4", "out.mp4")
	if err == nil || err.Error() != "ffmpeg failed: exit status 1" {
		t.Errorf("Run() error = %v", err)
	}
}

func TestEngine_CloseRemovesStorage(t *testing.T) {
	e := loadedEngine(t, &mockRunner{})
	dir := e.Dir()
	_ = e.WriteFile(context.Background(), "left.mp4", []byte("x"))

	if err := e.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("storage directory still exists: %v", err)
	}
	if e.Loaded() {
		t.Error("engine should not be loaded after Close")
	}
}

func TestEngine_CanceledContext(t *testing.T) {
	e := loadedEngine(t, &mockRunner{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := e.WriteFile(ctx, "a", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("WriteFile() error = %v, want context.Canceled", err)
	}
}

func TestProber_Duration(t *testing.T) {
	runner := &mockRunner{output: []byte("30.023000\n")}
	p := NewProber("", runner)

	got, err := p.Duration(context.Background(), "/videos/in.mp4")
	if err != nil {
		t.Fatalf("Duration() error: %v", err)
	}
	if got != 30.023 {
		t.Errorf("Duration() = %v, want 30.023", got)
	}
	if runner.outputCalls[0][0] != "ffprobe" || runner.outputCalls[0][len(runner.outputCalls[0])-1] != "/videos/in.mp4" {
		t.Errorf("unexpected ffprobe call %v", runner.outputCalls[0])
	}
}

func TestProber_DurationErrors(t *testing.T) {
	if _, err := NewProber("", &mockRunner{outputErr: errors.New("no such file")}).Duration(context.Background(), "x"); err == nil {
		t.Error("expected error when ffprobe fails")
	}
	if _, err := NewProber("", &mockRunner{output: []byte("N/A")}).Duration(context.Background(), "x"); err == nil {
		t.Error("expected error for unparsable duration")
	}
}

func TestLastLines(t *testing.T) {
	got := lastLines("a\nb\nc\nd\n", 2)
	if got != "c; d" {
		t.Errorf("lastLines() = %q, want %q", got, "c; d")
	}
}
