//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	appvideo "vtrim/application/video"
	"vtrim/domain/video"

	"github.com/cucumber/godog"
)

const mib = 1 << 20

type trimOutcome struct {
	result *video.TrimResult
	err    error
}

// pipelineContext holds test state for pipeline scenarios
type pipelineContext struct {
	engine    *memoryEngine
	chunkSize int
	policy    appvideo.ConcurrencyPolicy
	pipeline  *appvideo.Pipeline
	source    video.SourceMedia
	result    *video.TrimResult
	err       error
	pending   []chan trimOutcome
	outcomes  []trimOutcome
}

// SharedPipelineContext is reset before each scenario via Before hook
var SharedPipelineContext *pipelineContext

func InitializePipelineScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedPipelineContext = &pipelineContext{
			engine:    newMemoryEngine(),
			chunkSize: video.DefaultChunkSize,
			policy:    appvideo.PolicyQueue,
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		p := SharedPipelineContext
		if p != nil && p.engine.block != nil {
			select {
			case <-p.engine.block:
			default:
				close(p.engine.block)
			}
		}
		SharedPipelineContext = nil
		return c, nil
	})

	ctx.Step(`^a loaded engine$`, aLoadedEngine)
	ctx.Step(`^an engine that has not been loaded$`, anEngineThatHasNotBeenLoaded)
	ctx.Step(`^a chunk size of (\d+) MiB$`, aChunkSizeOfMiB)
	ctx.Step(`^the concurrency policy is "([^"]*)"$`, theConcurrencyPolicyIs)
	ctx.Step(`^a (\d+) MiB source named "([^"]*)"$`, aMiBSourceNamed)
	ctx.Step(`^the engine runs without listing its output$`, theEngineRunsWithoutListingItsOutput)
	ctx.Step(`^I trim the source from (\d+) to (\d+) seconds$`, iTrimTheSourceFromToSeconds)
	ctx.Step(`^the trim should succeed$`, theTrimShouldSucceed)
	ctx.Step(`^the pipeline should fail with kind "([^"]*)"$`, thePipelineShouldFailWithKind)
	ctx.Step(`^the chunks written should have sizes in MiB:$`, theChunksWrittenShouldHaveSizesInMiB)
	ctx.Step(`^the reassembled file should be (\d+) MiB$`, theReassembledFileShouldBeMiB)
	ctx.Step(`^the engine should not have been called$`, theEngineShouldNotHaveBeenCalled)
	ctx.Step(`^the engine storage should be empty after the run$`, theEngineStorageShouldBeEmptyAfterTheRun)
	ctx.Step(`^a trim is running in the engine$`, aTrimIsRunningInTheEngine)
	ctx.Step(`^I start another trim$`, iStartAnotherTrim)
	ctx.Step(`^I queue another trim$`, iQueueAnotherTrim)
	ctx.Step(`^the queued trim should still be waiting$`, theQueuedTrimShouldStillBeWaiting)
	ctx.Step(`^the running trim finishes$`, theRunningTrimFinishes)
	ctx.Step(`^every trim should succeed with its own output name$`, everyTrimShouldSucceedWithItsOwnOutputName)
	ctx.Step(`^the engine should never have run two operations at once$`, theEngineShouldNeverHaveRunTwoOperationsAtOnce)
}

func (p *pipelineContext) build() *appvideo.Pipeline {
	if p.pipeline == nil {
		p.pipeline = appvideo.NewPipeline(p.engine,
			appvideo.WithChunkSize(p.chunkSize),
			appvideo.WithVerify(2, time.Millisecond),
			appvideo.WithConcurrencyPolicy(p.policy),
		)
	}
	return p.pipeline
}

func aLoadedEngine() error {
	p := SharedPipelineContext
	if err := p.build().Init(context.Background()); err != nil {
		return err
	}
	// Load is not part of the trims under test
	p.engine.mu.Lock()
	p.engine.calls = nil
	p.engine.mu.Unlock()
	return nil
}

func anEngineThatHasNotBeenLoaded() error {
	SharedPipelineContext.build()
	return nil
}

func aChunkSizeOfMiB(n int) error {
	SharedPipelineContext.chunkSize = n * mib
	return nil
}

func theConcurrencyPolicyIs(policy string) error {
	SharedPipelineContext.policy = appvideo.ConcurrencyPolicy(policy)
	return nil
}

func aMiBSourceNamed(n int, name string) error {
	data := make([]byte, n*mib)
	for i := range data {
		data[i] = byte(i >> 12)
	}
	SharedPipelineContext.source = video.SourceMedia{Name: name, MIMEType: "video/mp4", Data: data}
	return nil
}

func theEngineRunsWithoutListingItsOutput() error {
	SharedPipelineContext.engine.hideOutput = true
	return nil
}

func iTrimTheSourceFromToSeconds(start, end int) error {
	p := SharedPipelineContext
	p.result, p.err = p.build().Trim(context.Background(), p.source, video.TrimRange{Start: float64(start), End: float64(end)})
	return nil
}

func theTrimShouldSucceed() error {
	p := SharedPipelineContext
	if p.err != nil {
		return fmt.Errorf("unexpected error: %v", p.err)
	}
	if p.result == nil {
		return fmt.Errorf("no result returned")
	}
	return nil
}

func thePipelineShouldFailWithKind(kind string) error {
	p := SharedPipelineContext
	if p.err == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if p.result != nil {
		return fmt.Errorf("expected no result alongside the error")
	}
	if got := video.Kind(p.err); got != kind {
		return fmt.Errorf("expected error kind %q, got %q (%v)", kind, got, p.err)
	}
	return nil
}

func theChunksWrittenShouldHaveSizesInMiB(table *godog.Table) error {
	writes := SharedPipelineContext.engine.chunkWrites()

	var want []int
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		n, err := strconv.Atoi(row.Cells[0].Value)
		if err != nil {
			return err
		}
		want = append(want, n*mib)
	}

	got := make([]int, len(writes))
	for i, w := range writes {
		got[i] = w.size
	}
	if !slices.Equal(got, want) {
		return fmt.Errorf("expected chunk sizes %v, got %v", want, got)
	}
	return nil
}

func theReassembledFileShouldBeMiB(n int) error {
	e := SharedPipelineContext.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, w := range e.writes {
		if strings.Contains(w.name, "-combined.") {
			if w.size != n*mib {
				return fmt.Errorf("expected reassembled size %d, got %d", n*mib, w.size)
			}
			return nil
		}
	}
	return fmt.Errorf("no reassembled file was written")
}

func theEngineShouldNotHaveBeenCalled() error {
	if n := SharedPipelineContext.engine.callCount(); n != 0 {
		return fmt.Errorf("expected no engine calls, got %d", n)
	}
	return nil
}

func theEngineStorageShouldBeEmptyAfterTheRun() error {
	if names := SharedPipelineContext.engine.fileNames(); len(names) != 0 {
		return fmt.Errorf("expected empty engine storage, found %v", names)
	}
	return nil
}

func (p *pipelineContext) startTrim() chan trimOutcome {
	done := make(chan trimOutcome, 1)
	go func() {
		result, err := p.build().Trim(context.Background(), p.source, video.TrimRange{Start: 1, End: 2})
		done <- trimOutcome{result: result, err: err}
	}()
	p.pending = append(p.pending, done)
	return done
}

func aTrimIsRunningInTheEngine() error {
	p := SharedPipelineContext
	p.engine.block = make(chan struct{})
	p.engine.runStarted = make(chan struct{}, 4)
	p.startTrim()

	select {
	case <-p.engine.runStarted:
		return nil
	case <-time.After(5 * time.Second):
		return errors.New("trim never reached the engine run")
	}
}

func iStartAnotherTrim() error {
	p := SharedPipelineContext
	p.result, p.err = p.build().Trim(context.Background(), p.source, video.TrimRange{Start: 1, End: 2})
	return nil
}

func iQueueAnotherTrim() error {
	SharedPipelineContext.startTrim()
	return nil
}

func theQueuedTrimShouldStillBeWaiting() error {
	p := SharedPipelineContext
	select {
	case out := <-p.pending[len(p.pending)-1]:
		return fmt.Errorf("queued trim finished while another was running: %v", out.err)
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

func theRunningTrimFinishes() error {
	p := SharedPipelineContext
	close(p.engine.block)

	for _, done := range p.pending {
		select {
		case out := <-done:
			p.outcomes = append(p.outcomes, out)
		case <-time.After(5 * time.Second):
			return errors.New("trim did not finish")
		}
	}
	p.pending = nil
	return nil
}

func everyTrimShouldSucceedWithItsOwnOutputName() error {
	p := SharedPipelineContext
	for i, out := range p.outcomes {
		if out.err != nil {
			return fmt.Errorf("trim %d failed: %v", i, out.err)
		}
	}

	e := p.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.runs) != len(p.outcomes) {
		return fmt.Errorf("expected %d engine runs, got %d", len(p.outcomes), len(e.runs))
	}
	seen := make(map[string]bool)
	for _, args := range e.runs {
		output := args[len(args)-1]
		if seen[output] {
			return fmt.Errorf("output name %q used twice", output)
		}
		seen[output] = true
	}
	return nil
}

func theEngineShouldNeverHaveRunTwoOperationsAtOnce() error {
	if SharedPipelineContext.engine.overlapped.Load() {
		return errors.New("engine operations overlapped")
	}
	return nil
}
