package video

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineNotReady is returned when the transcoding engine has not finished loading
	ErrEngineNotReady = errors.New("transcoding engine is not loaded")

	// ErrInvalidRange is returned when a trim range does not end after it starts
	ErrInvalidRange = errors.New("invalid trim range")

	// ErrEmptyInput is returned when there are no chunks to reassemble
	ErrEmptyInput = errors.New("no chunks to reassemble")

	// ErrNotFound is returned when an expected virtual file is missing from engine storage
	ErrNotFound = errors.New("virtual file not found")

	// ErrEngineInvocationFailed is returned when the engine rejects or fails an operation
	ErrEngineInvocationFailed = errors.New("engine invocation failed")

	// ErrPipelineBusy is returned when a trim is rejected because another run is in flight
	ErrPipelineBusy = errors.New("another trim is already in progress")

	// ErrInvalidChunkSize is returned when the chunk size is not a positive number of bytes
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrEngineNotReady, "engine_not_ready"},
	{ErrInvalidRange, "invalid_range"},
	{ErrEmptyInput, "empty_input"},
	{ErrNotFound, "not_found"},
	{ErrPipelineBusy, "busy"},
	{ErrInvalidChunkSize, "invalid_chunk_size"},
	{ErrEngineInvocationFailed, "engine_invocation_failed"},
}

// Kind returns a stable label for the error kind carried by err, or "" when
// err carries none of the package sentinels.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}

// StepError tags a failure with the pipeline step that produced it
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
