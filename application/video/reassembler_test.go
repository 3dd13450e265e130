package video

import (
	"context"
	"errors"
	"testing"

	"vtrim/domain/video"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReassembler_ConcatenatesInGivenOrder(t *testing.T) {
	ctx := context.Background()
	engine := newFakeEngine()
	engine.files["c-0"] = []byte("abc")
	engine.files["c-1"] = []byte("de")
	engine.files["c-2"] = []byte("fghi")

	name, err := NewReassembler(NewBridge(engine)).Reassemble(ctx, []string{"c-0", "c-1", "c-2"}, "combined")
	require.NoError(t, err)

	assert.Equal(t, "combined", name)
	assert.Equal(t, "abcdefghi", string(engine.files["combined"]))
	assert.Equal(t, []string{"read:c-0", "read:c-1", "read:c-2"}, engine.callsWithPrefix("read:"))
}

func TestReassembler_UsesListOrderNotNameOrder(t *testing.T) {
	engine := newFakeEngine()
	engine.files["b"] = []byte("1")
	engine.files["a"] = []byte("2")

	_, err := NewReassembler(NewBridge(engine)).Reassemble(context.Background(), []string{"b", "a"}, "out")
	require.NoError(t, err)
	assert.Equal(t, "12", string(engine.files["out"]))
}

func TestReassembler_EmptyInput(t *testing.T) {
	engine := newFakeEngine()

	_, err := NewReassembler(NewBridge(engine)).Reassemble(context.Background(), nil, "out")
	assert.True(t, errors.Is(err, video.ErrEmptyInput))
	assert.Zero(t, engine.callCount(), "no engine calls for empty input")
	assert.NotContains(t, engine.fileNames(), "out")
}

func TestReassembler_MissingChunk(t *testing.T) {
	engine := newFakeEngine()
	engine.files["c-0"] = []byte("abc")

	_, err := NewReassembler(NewBridge(engine)).Reassemble(context.Background(), []string{"c-0", "c-1"}, "out")
	assert.True(t, errors.Is(err, video.ErrNotFound))
	assert.Contains(t, err.Error(), "chunk 1")
	assert.NotContains(t, engine.fileNames(), "out")
}
