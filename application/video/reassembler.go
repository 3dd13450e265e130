package video

import (
	"context"
	"fmt"

	"vtrim/domain/video"
)

// Reassembler joins chunks held in engine storage into one virtual file
type Reassembler struct {
	bridge *Bridge
}

// NewReassembler creates a Reassembler that reads and writes through bridge
func NewReassembler(bridge *Bridge) *Reassembler {
	return &Reassembler{bridge: bridge}
}

// Reassemble reads chunkNames in order, concatenates them and writes the
// result under combinedName. Parts are placed by their position in
// chunkNames, never by the order in which reads complete.
func (r *Reassembler) Reassemble(ctx context.Context, chunkNames []string, combinedName string) (string, error) {
	if len(chunkNames) == 0 {
		return "", video.ErrEmptyInput
	}

	parts := make([][]byte, len(chunkNames))
	total := 0
	for i, name := range chunkNames {
		data, err := r.bridge.Read(ctx, name)
		if err != nil {
			return "", fmt.Errorf("chunk %d: %w", i, err)
		}
		parts[i] = data
		total += len(data)
	}

	combined := make([]byte, 0, total)
	for _, part := range parts {
		combined = append(combined, part...)
	}

	if err := r.bridge.Write(ctx, combinedName, combined); err != nil {
		return "", err
	}

	return combinedName, nil
}
