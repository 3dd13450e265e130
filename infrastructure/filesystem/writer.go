package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"vtrim/domain/video"

	"github.com/google/renameio/v2"
)

// ResultWriter stores trim results on the host filesystem
type ResultWriter struct{}

// NewResultWriter creates a new ResultWriter
func NewResultWriter() *ResultWriter {
	return &ResultWriter{}
}

// Write atomically replaces path with the result bytes: readers see either the
// previous file or the complete new one, never a partial write.
func (w *ResultWriter) Write(path string, result *video.TrimResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending output file: %w", err)
	}
	defer pending.Cleanup()

	if _, err := pending.Write(result.Data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace output: %w", err)
	}

	return nil
}
