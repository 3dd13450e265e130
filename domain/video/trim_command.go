package video

import (
	"fmt"
	"math"
	"strconv"
)

// BuildTrimCommand returns the engine arguments that cut r out of input into
// output using stream copy.
//
// The range is expressed as input seek plus duration (-ss start -t duration).
// Because nothing is re-encoded, the cut starts at the keyframe at or before
// r.Start, so the output can begin up to one GOP earlier than requested and
// run correspondingly longer. Callers that need frame accuracy must re-encode.
func BuildTrimCommand(input, output string, r TrimRange) ([]string, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if input == "" || output == "" {
		return nil, fmt.Errorf("input and output names are required")
	}

	if input == output {
		return nil, fmt.Errorf("output name %q must differ from input", output)
	}

	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(r.Start),
		"-i", input,
		"-t", formatSeconds(r.Duration()),
		"-map", "0",
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		"-y",
		output,
	}, nil
}

// formatSeconds renders seconds with at most millisecond precision and no trailing zeros
func formatSeconds(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
