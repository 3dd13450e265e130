package video

import (
	"fmt"
	"iter"
)

// DefaultChunkSize is the transfer granularity used when none is configured
const DefaultChunkSize = 50 * 1024 * 1024

// Chunk is a contiguous slice of a source buffer
type Chunk struct {
	Index  int
	Offset int64
	Data   []byte
}

// Len returns the chunk length in bytes
func (c Chunk) Len() int {
	return len(c.Data)
}

// End returns the offset one past the last byte of the chunk
func (c Chunk) End() int64 {
	return c.Offset + int64(len(c.Data))
}

// ChunkCount returns ceil(size / chunkSize), or 0 for empty input or an invalid chunk size
func ChunkCount(size int64, chunkSize int) int {
	if size <= 0 || chunkSize <= 0 {
		return 0
	}
	return int((size + int64(chunkSize) - 1) / int64(chunkSize))
}

// SplitChunks partitions data into chunks of chunkSize bytes; the last chunk
// holds the remainder. The returned sequence is lazy and can be ranged over
// more than once. Chunks alias data rather than copying it.
func SplitChunks(data []byte, chunkSize int) (iter.Seq[Chunk], error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, chunkSize)
	}

	return func(yield func(Chunk) bool) {
		for index, offset := 0, 0; offset < len(data); index, offset = index+1, offset+chunkSize {
			end := min(offset+chunkSize, len(data))
			chunk := Chunk{
				Index:  index,
				Offset: int64(offset),
				Data:   data[offset:end:end],
			}
			if !yield(chunk) {
				return
			}
		}
	}, nil
}
