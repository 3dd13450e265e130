package video

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"vtrim/domain/video"
)

// Bridge moves named buffers in and out of the engine's private storage.
// Every call is serialized: the engine services one operation at a time and
// each call returns only after the engine has completed it.
type Bridge struct {
	mu     sync.Mutex
	engine video.Engine
}

// NewBridge creates a Bridge over an engine handle
func NewBridge(engine video.Engine) *Bridge {
	return &Bridge{engine: engine}
}

// Load loads the engine if it is not loaded yet
func (b *Bridge) Load(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.engine.Loaded() {
		return nil
	}
	if err := b.engine.Load(ctx); err != nil {
		return fmt.Errorf("load engine: %w", err)
	}
	return nil
}

// Ready reports whether the engine has finished loading
func (b *Bridge) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.Loaded()
}

// Write stores data under name, replacing any previous content
func (b *Bridge) Write(ctx context.Context, name string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.engine.WriteFile(ctx, name, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Read returns the content stored under name, or video.ErrNotFound
func (b *Bridge) Read(ctx context.Context, name string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := b.engine.ReadFile(ctx, name)
	if err == nil {
		return data, nil
	}
	return nil, b.classifyLocked(ctx, "read", name, err)
}

// List returns the names currently present in engine storage
func (b *Bridge) List(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listLocked(ctx)
}

// Contains reports whether name is present in engine storage
func (b *Bridge) Contains(ctx context.Context, name string) (bool, error) {
	names, err := b.List(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(names, name), nil
}

// Remove unlinks name, or returns video.ErrNotFound if it is absent
func (b *Bridge) Remove(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.engine.Unlink(ctx, name); err != nil {
		return b.classifyLocked(ctx, "remove", name, err)
	}
	return nil
}

// Run executes the engine with args and waits for it to return
func (b *Bridge) Run(ctx context.Context, args []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.engine.Run(ctx, args...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", ctxErr, err)
		}
		return fmt.Errorf("%w: %w", video.ErrEngineInvocationFailed, err)
	}
	return nil
}

func (b *Bridge) listLocked(ctx context.Context) ([]string, error) {
	entries, err := b.engine.ReadDir(ctx, "/")
	if err != nil {
		return nil, fmt.Errorf("list storage: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e == "." || e == ".." {
			continue
		}
		names = append(names, e)
	}
	return names, nil
}

// classifyLocked maps an engine failure on name to video.ErrNotFound when a
// listing confirms the name is absent. Engines are not required to report
// missing names consistently.
func (b *Bridge) classifyLocked(ctx context.Context, op, name string, err error) error {
	if errors.Is(err, video.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", op, name, err)
	}

	if names, listErr := b.listLocked(ctx); listErr == nil && !slices.Contains(names, name) {
		return fmt.Errorf("%s %s: %w", op, name, video.ErrNotFound)
	}

	return fmt.Errorf("%s %s: %w", op, name, err)
}
