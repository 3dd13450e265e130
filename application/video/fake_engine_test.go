package video

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
)

// errFS mimics an engine that reports missing files with an opaque error
var errFS = errors.New("FS error")

// fakeEngine is an in-memory engine. Run copies the -i input to the output
// name unless produce is set.
type fakeEngine struct {
	mu      sync.Mutex
	loaded  bool
	loadErr error
	files   map[string][]byte
	calls   []string
	args    [][]string

	runErr     error
	unlinkErr  error
	hideOutput bool
	produce    func(input []byte) []byte
	beforeRun  func()
	onReadDir  func()
	onUnlink   func(name string)

	// honorCtx makes storage calls fail once ctx is done, like the ffmpeg engine
	honorCtx bool

	inFlight   atomic.Int32
	overlapped atomic.Bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{loaded: true, files: make(map[string][]byte)}
}

func (f *fakeEngine) enter(call string) func() {
	if f.inFlight.Add(1) > 1 {
		f.overlapped.Store(true)
	}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeEngine) Load(ctx context.Context) error {
	defer f.enter("load")()
	if f.loadErr != nil {
		return f.loadErr
	}
	f.mu.Lock()
	f.loaded = true
	f.mu.Unlock()
	return nil
}

func (f *fakeEngine) Loaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

func (f *fakeEngine) WriteFile(ctx context.Context, name string, data []byte) error {
	defer f.enter("write:" + name)()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = slices.Clone(data)
	return nil
}

func (f *fakeEngine) ReadFile(ctx context.Context, name string) ([]byte, error) {
	defer f.enter("read:" + name)()
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[name]
	if !ok {
		return nil, errFS
	}
	return slices.Clone(data), nil
}

func (f *fakeEngine) ReadDir(ctx context.Context, path string) ([]string, error) {
	defer f.enter("readdir")()
	if f.honorCtx && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if f.onReadDir != nil {
		f.onReadDir()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	names := []string{".", ".."}
	for name := range f.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeEngine) Unlink(ctx context.Context, name string) error {
	defer f.enter("unlink:" + name)()
	if f.onUnlink != nil {
		f.onUnlink(name)
	}
	if f.honorCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unlinkErr != nil {
		return f.unlinkErr
	}
	if _, ok := f.files[name]; !ok {
		return errFS
	}
	delete(f.files, name)
	return nil
}

func (f *fakeEngine) Run(ctx context.Context, args ...string) error {
	defer f.enter("run")()
	if f.beforeRun != nil {
		f.beforeRun()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.args = append(f.args, args)
	if f.runErr != nil {
		return f.runErr
	}

	input := f.files[args[slices.Index(args, "-i")+1]]
	out := slices.Clone(input)
	if f.produce != nil {
		out = f.produce(input)
	}
	if !f.hideOutput {
		f.files[args[len(args)-1]] = out
	}
	return nil
}

func (f *fakeEngine) callsWithPrefix(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeEngine) fileNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for name := range f.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
