package video

// State is a step of a pipeline run
type State string

const (
	StateIdle            State = "Idle"
	StateChunkingInput   State = "ChunkingInput"
	StateWritingChunks   State = "WritingChunks"
	StateReassembling    State = "Reassembling"
	StateTrimming        State = "Trimming"
	StateVerifyingOutput State = "VerifyingOutput"
	StateReadingOutput   State = "ReadingOutput"
	StateDone            State = "Done"
	StateError           State = "Error"
)

// StateObserver is notified of every state change of a run
type StateObserver func(runID string, from, to State)

// RunStats summarises one finished run for metrics
type RunStats struct {
	Kind     string // error kind, empty on success
	Seconds  float64
	BytesIn  int64
	BytesOut int64
	Chunks   int
}

// Recorder receives run statistics
type Recorder interface {
	ObserveRun(stats RunStats)
}
