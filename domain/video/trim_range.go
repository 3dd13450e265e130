package video

import (
	"fmt"
	"math"
)

// TrimRange is the sub-range of a source to keep, in seconds
type TrimRange struct {
	Start float64
	End   float64
}

// NewTrimRange creates a validated TrimRange
func NewTrimRange(start, end float64) (TrimRange, error) {
	r := TrimRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return TrimRange{}, err
	}
	return r, nil
}

// ParseTrimRange parses start and end timestamps into a validated TrimRange
func ParseTrimRange(start, end string) (TrimRange, error) {
	s, err := ParseTimestamp(start)
	if err != nil {
		return TrimRange{}, fmt.Errorf("invalid start time: %w", err)
	}

	e, err := ParseTimestamp(end)
	if err != nil {
		return TrimRange{}, fmt.Errorf("invalid end time: %w", err)
	}

	return NewTrimRange(s.TotalSeconds(), e.TotalSeconds())
}

// Validate checks that the range is finite, non-negative and ends after it starts
func (r TrimRange) Validate() error {
	for _, v := range []float64{r.Start, r.End} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bounds must be finite", ErrInvalidRange)
		}
	}

	if r.Start < 0 {
		return fmt.Errorf("%w: start time %s is negative", ErrInvalidRange, formatSeconds(r.Start))
	}

	if r.End <= r.Start {
		return fmt.Errorf("%w: end time %s must be after start time %s", ErrInvalidRange, r.EndTimestamp(), r.StartTimestamp())
	}

	return nil
}

// Duration returns End - Start
func (r TrimRange) Duration() float64 {
	return r.End - r.Start
}

// StartTimestamp returns the start as a Timestamp
func (r TrimRange) StartTimestamp() Timestamp {
	return TimestampFromSeconds(r.Start)
}

// EndTimestamp returns the end as a Timestamp
func (r TrimRange) EndTimestamp() Timestamp {
	return TimestampFromSeconds(r.End)
}

func (r TrimRange) String() string {
	return fmt.Sprintf("%s-%s", r.StartTimestamp(), r.EndTimestamp())
}
