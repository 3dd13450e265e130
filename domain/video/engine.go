package video

import "context"

// Engine is the embedded transcoding engine: a private virtual filesystem plus
// a command runner. A single instance services one operation at a time.
// This is a port that can be implemented by different infrastructure adapters
type Engine interface {
	// Load prepares the engine; it must complete before any other call
	Load(ctx context.Context) error

	// Loaded reports whether Load has completed successfully
	Loaded() bool

	WriteFile(ctx context.Context, name string, data []byte) error
	ReadFile(ctx context.Context, name string) ([]byte, error)
	ReadDir(ctx context.Context, path string) ([]string, error)
	Unlink(ctx context.Context, name string) error

	// Run executes the engine with the given arguments. Returning does not
	// guarantee that produced files are already visible to ReadDir.
	Run(ctx context.Context, args ...string) error
}

// FileChecker defines the interface for checking file existence
// This is used to validate that source files exist before trimming
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}
