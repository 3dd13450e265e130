package video

import (
	"fmt"

	"github.com/google/uuid"
)

// runNames derives the virtual file names owned by one pipeline run. The run
// id prefix keeps names from colliding with leftovers of earlier runs.
type runNames struct {
	id  string
	ext string
}

func newRunID() string {
	return uuid.NewString()
}

func (n runNames) chunk(index int) string {
	return fmt.Sprintf("%s-chunk-%d.%s", n.id, index, n.ext)
}

func (n runNames) combined() string {
	return fmt.Sprintf("%s-combined.%s", n.id, n.ext)
}

func (n runNames) output() string {
	return fmt.Sprintf("%s-trimmed.%s", n.id, n.ext)
}
