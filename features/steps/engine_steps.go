//go:build integration

package steps

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// memoryEngine is an in-memory transcoding engine. Run copies the -i input to
// the last argument, so the "trimmed" output is the reassembled source.
type memoryEngine struct {
	mu     sync.Mutex
	loaded bool
	files  map[string][]byte
	calls  []string
	writes []engineWrite
	runs   [][]string

	hideOutput bool
	runErr     error

	// block, when set, holds Run until it is closed; runStarted is signalled first
	block      chan struct{}
	runStarted chan struct{}

	inFlight   atomic.Int32
	overlapped atomic.Bool
}

type engineWrite struct {
	name string
	size int
}

func newMemoryEngine() *memoryEngine {
	return &memoryEngine{files: make(map[string][]byte)}
}

func (m *memoryEngine) enter(call string) func() {
	if m.inFlight.Add(1) > 1 {
		m.overlapped.Store(true)
	}
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
	return func() { m.inFlight.Add(-1) }
}

func (m *memoryEngine) Load(ctx context.Context) error {
	defer m.enter("load")()
	m.mu.Lock()
	m.loaded = true
	m.mu.Unlock()
	return nil
}

func (m *memoryEngine) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

func (m *memoryEngine) WriteFile(ctx context.Context, name string, data []byte) error {
	defer m.enter("write:" + name)()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = slices.Clone(data)
	m.writes = append(m.writes, engineWrite{name: name, size: len(data)})
	return nil
}

func (m *memoryEngine) ReadFile(ctx context.Context, name string) ([]byte, error) {
	defer m.enter("read:" + name)()
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	if !ok {
		return nil, errors.New("ENOENT")
	}
	return slices.Clone(data), nil
}

func (m *memoryEngine) ReadDir(ctx context.Context, path string) ([]string, error) {
	defer m.enter("readdir")()
	return append([]string{".", ".."}, m.fileNames()...), nil
}

func (m *memoryEngine) Unlink(ctx context.Context, name string) error {
	defer m.enter("unlink:" + name)()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; !ok {
		return errors.New("ENOENT")
	}
	delete(m.files, name)
	return nil
}

func (m *memoryEngine) Run(ctx context.Context, args ...string) error {
	defer m.enter("run")()

	if m.block != nil {
		m.runStarted <- struct{}{}
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, args)
	if m.runErr != nil {
		return m.runErr
	}
	if !m.hideOutput {
		input := m.files[args[slices.Index(args, "-i")+1]]
		m.files[args[len(args)-1]] = slices.Clone(input)
	}
	return nil
}

func (m *memoryEngine) fileNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// chunkWrites returns the writes of chunk files in call order
func (m *memoryEngine) chunkWrites() []engineWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []engineWrite
	for _, w := range m.writes {
		if strings.Contains(w.name, "-chunk-") {
			out = append(out, w)
		}
	}
	return out
}

func (m *memoryEngine) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *memoryEngine) lastRun() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.runs) == 0 {
		return nil
	}
	return m.runs[len(m.runs)-1]
}
