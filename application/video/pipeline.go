package video

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"vtrim/domain/video"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// ConcurrencyPolicy decides what happens to a Trim call issued while another is running
type ConcurrencyPolicy string

const (
	// PolicyQueue waits for the running trim to finish
	PolicyQueue ConcurrencyPolicy = "queue"
	// PolicyReject fails immediately with video.ErrPipelineBusy
	PolicyReject ConcurrencyPolicy = "reject"
)

// Pipeline trims sources by moving them through a transcoding engine:
// split, write chunks, reassemble, run the trim, verify and read the output.
// At most one run is in flight at a time.
type Pipeline struct {
	bridge      *Bridge
	reassembler *Reassembler
	gate        *semaphore.Weighted

	chunkSize      int
	verifyAttempts int
	verifyInterval time.Duration
	policy         ConcurrencyPolicy
	newRunID       func() string

	logger   zerolog.Logger
	recorder Recorder
	observer StateObserver

	mu    sync.Mutex
	state State
}

// Option is a functional option for configuring Pipeline
type Option func(*Pipeline)

// WithChunkSize sets the transfer chunk size in bytes
func WithChunkSize(size int) Option {
	return func(p *Pipeline) {
		p.chunkSize = size
	}
}

// WithVerify sets how often storage is listed while waiting for the trim output
func WithVerify(attempts int, interval time.Duration) Option {
	return func(p *Pipeline) {
		if attempts > 0 {
			p.verifyAttempts = attempts
		}
		if interval >= 0 {
			p.verifyInterval = interval
		}
	}
}

// WithConcurrencyPolicy sets the behaviour for overlapping Trim calls
func WithConcurrencyPolicy(policy ConcurrencyPolicy) Option {
	return func(p *Pipeline) {
		p.policy = policy
	}
}

// WithLogger sets the pipeline logger
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithRecorder sets the run statistics recorder
func WithRecorder(recorder Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = recorder
	}
}

// WithStateObserver sets a callback for state changes
func WithStateObserver(observer StateObserver) Option {
	return func(p *Pipeline) {
		p.observer = observer
	}
}

// WithRunIDs overrides run id generation (for testing)
func WithRunIDs(next func() string) Option {
	return func(p *Pipeline) {
		p.newRunID = next
	}
}

// NewPipeline creates a pipeline that owns the given engine handle
func NewPipeline(engine video.Engine, opts ...Option) *Pipeline {
	bridge := NewBridge(engine)
	p := &Pipeline{
		bridge:         bridge,
		reassembler:    NewReassembler(bridge),
		gate:           semaphore.NewWeighted(1),
		chunkSize:      video.DefaultChunkSize,
		verifyAttempts: 3,
		verifyInterval: 200 * time.Millisecond,
		policy:         PolicyQueue,
		newRunID:       newRunID,
		logger:         zerolog.Nop(),
		state:          StateIdle,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Init loads the engine. Trim fails with video.ErrEngineNotReady until Init succeeds.
func (p *Pipeline) Init(ctx context.Context) error {
	start := time.Now()
	if err := p.bridge.Load(ctx); err != nil {
		return err
	}
	p.logger.Debug().Dur("elapsed", time.Since(start)).Msg("engine loaded")
	return nil
}

// State returns the state of the current or most recent run
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Trim cuts r out of source. It returns either a result or a *video.StepError
// whose chain matches one of the video error sentinels. Temporary virtual
// files are removed on both paths; cleanup failures are logged only.
func (p *Pipeline) Trim(ctx context.Context, source video.SourceMedia, r video.TrimRange) (*video.TrimResult, error) {
	if err := r.Validate(); err != nil {
		return nil, &video.StepError{Step: string(StateIdle), Err: err}
	}

	if err := p.acquire(ctx); err != nil {
		return nil, &video.StepError{Step: string(StateIdle), Err: err}
	}
	defer p.gate.Release(1)

	id := p.newRunID()
	run := &run{
		pipeline: p,
		id:       id,
		names:    runNames{id: id, ext: source.Extension()},
		logger:   p.logger.With().Str("run_id", id).Logger(),
		state:    StateIdle,
	}
	p.setState(StateIdle)

	started := time.Now()
	run.logger.Info().
		Str("source", source.Name).
		Int64("bytes", source.Size()).
		Stringer("range", r).
		Msg("trim started")

	result, err := run.execute(ctx, source, r)
	run.cleanup(context.WithoutCancel(ctx))

	stats := RunStats{
		Kind:    video.Kind(err),
		Seconds: time.Since(started).Seconds(),
		BytesIn: source.Size(),
		Chunks:  run.chunks,
	}
	if err != nil {
		switch {
		case stats.Kind != "":
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			stats.Kind = "canceled"
		default:
			stats.Kind = "unknown"
		}
		run.logger.Error().Err(err).Str("kind", stats.Kind).Msg("trim failed")
	} else {
		stats.BytesOut = result.Size()
		run.logger.Info().
			Int64("bytes", result.Size()).
			Dur("elapsed", time.Since(started)).
			Msg("trim finished")
	}
	if p.recorder != nil {
		p.recorder.ObserveRun(stats)
	}

	return result, err
}

func (p *Pipeline) acquire(ctx context.Context) error {
	if p.policy == PolicyReject {
		if !p.gate.TryAcquire(1) {
			return video.ErrPipelineBusy
		}
		return nil
	}
	return p.gate.Acquire(ctx, 1)
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// run holds the state of a single Trim call
type run struct {
	pipeline *Pipeline
	id       string
	names    runNames
	logger   zerolog.Logger
	state    State
	chunks   int

	// pending lists every name this run may have created and not yet removed
	pending []string
}

func (r *run) execute(ctx context.Context, source video.SourceMedia, tr video.TrimRange) (*video.TrimResult, error) {
	p := r.pipeline

	if !p.bridge.Ready() {
		return nil, r.fail(video.ErrEngineNotReady)
	}

	r.transition(StateChunkingInput)
	chunks, err := video.SplitChunks(source.Data, p.chunkSize)
	if err != nil {
		return nil, r.fail(err)
	}

	r.transition(StateWritingChunks)
	var chunkNames []string
	for chunk := range chunks {
		name := r.names.chunk(chunk.Index)
		r.track(name)
		if err := p.bridge.Write(ctx, name, chunk.Data); err != nil {
			return nil, r.fail(fmt.Errorf("chunk %d: %w", chunk.Index, err))
		}
		chunkNames = append(chunkNames, name)
		r.chunks++
		r.logger.Debug().Int("index", chunk.Index).Int64("offset", chunk.Offset).Int("bytes", chunk.Len()).Msg("chunk written")
	}

	r.transition(StateReassembling)
	combined := r.names.combined()
	r.track(combined)
	if _, err := p.reassembler.Reassemble(ctx, chunkNames, combined); err != nil {
		return nil, r.fail(err)
	}
	r.release(ctx, chunkNames)

	r.transition(StateTrimming)
	output := r.names.output()
	args, err := video.BuildTrimCommand(combined, output, tr)
	if err != nil {
		return nil, r.fail(err)
	}
	r.track(output)
	r.logger.Debug().Strs("args", args).Msg("running engine")
	if err := p.bridge.Run(ctx, args); err != nil {
		return nil, r.fail(err)
	}

	r.transition(StateVerifyingOutput)
	if err := r.verifyOutput(ctx, output); err != nil {
		return nil, r.fail(err)
	}

	r.transition(StateReadingOutput)
	data, err := p.bridge.Read(ctx, output)
	if err != nil {
		return nil, r.fail(err)
	}

	r.transition(StateDone)
	return &video.TrimResult{
		Data:     data,
		MIMEType: source.MIMEType,
		Range:    tr,
	}, nil
}

// verifyOutput lists storage until output shows up. The engine returning from
// Run is not proof that its output is visible yet.
func (r *run) verifyOutput(ctx context.Context, output string) error {
	p := r.pipeline

	for attempt := 1; ; attempt++ {
		present, err := p.bridge.Contains(ctx, output)
		if err != nil {
			return err
		}
		if present {
			return nil
		}
		if attempt >= p.verifyAttempts {
			return fmt.Errorf("%w: %s missing after trim (%d listings)", video.ErrNotFound, output, attempt)
		}

		r.logger.Debug().Int("attempt", attempt).Str("output", output).Msg("output not visible yet")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.verifyInterval):
		}
	}
}

func (r *run) transition(to State) {
	from := r.state
	r.state = to
	r.pipeline.setState(to)
	r.logger.Debug().Str("from", string(from)).Str("to", string(to)).Msg("state change")
	if r.pipeline.observer != nil {
		r.pipeline.observer(r.id, from, to)
	}
}

// fail moves the run to Error and tags err with the step that produced it.
// Failures that carry no kind of their own are engine failures.
func (r *run) fail(err error) error {
	step := r.state
	if video.Kind(err) == "" && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %w", video.ErrEngineInvocationFailed, err)
	}
	r.transition(StateError)
	return &video.StepError{Step: string(step), Err: err}
}

func (r *run) track(name string) {
	r.pending = append(r.pending, name)
}

// release removes names that are no longer needed. Names that could not be
// removed stay pending for cleanup.
func (r *run) release(ctx context.Context, names []string) {
	for _, name := range names {
		if err := r.remove(ctx, name); err != nil {
			r.logger.Debug().Err(err).Str("name", name).Msg("release deferred to cleanup")
		}
	}
}

// cleanup tries every name still pending once. It never fails the run.
func (r *run) cleanup(ctx context.Context) {
	for _, name := range slices.Clone(r.pending) {
		if err := r.remove(ctx, name); err != nil {
			r.logger.Warn().Err(err).Str("name", name).Msg("cleanup failed")
		}
	}
	r.pending = nil
}

// remove unlinks name and drops it from pending once it is gone
func (r *run) remove(ctx context.Context, name string) error {
	err := r.pipeline.bridge.Remove(ctx, name)
	switch {
	case err == nil:
	case errors.Is(err, video.ErrNotFound):
		r.logger.Debug().Str("name", name).Msg("cleanup: already gone")
	default:
		return err
	}
	r.pending = slices.DeleteFunc(r.pending, func(n string) bool { return n == name })
	return nil
}
