package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Prober reads media metadata with ffprobe
type Prober struct {
	ffprobePath string
	runner      CommandRunner
}

// NewProber creates a Prober. Empty path means "ffprobe"; nil runner uses os/exec.
func NewProber(ffprobePath string, runner CommandRunner) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if runner == nil {
		runner = &ExecCommandRunner{}
	}
	return &Prober{ffprobePath: ffprobePath, runner: runner}
}

// Duration returns the container duration of the file at path in seconds
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	out, err := p.runner.Output(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}

	raw := strings.TrimSpace(string(out))
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected ffprobe duration %q: %w", raw, err)
	}
	return seconds, nil
}
