package video

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Timestamp represents a media position with millisecond precision
type Timestamp struct {
	Hours   int
	Minutes int
	Seconds int
	Millis  int
}

var (
	// timestampRegex matches HH:MM:SS with optional fractional seconds
	timestampRegex = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})(?:\.(\d{1,3}))?$`)

	// shortTimestampRegex matches MM:SS with optional fractional seconds
	shortTimestampRegex = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?:\.(\d{1,3}))?$`)

	// secondsRegex matches a plain seconds value such as 90 or 12.5
	secondsRegex = regexp.MustCompile(`^(\d+)(?:\.(\d{1,3}))?$`)
)

// ParseTimestamp parses HH:MM:SS[.fff], MM:SS[.fff] or plain seconds
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)

	if m := timestampRegex.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		seconds, _ := strconv.Atoi(m[3])
		return newTimestamp(s, hours, minutes, seconds, parseMillis(m[4]))
	}

	if m := shortTimestampRegex.FindStringSubmatch(s); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		seconds, _ := strconv.Atoi(m[2])
		return newTimestamp(s, 0, minutes, seconds, parseMillis(m[3]))
	}

	if m := secondsRegex.FindStringSubmatch(s); m != nil {
		total, err := strconv.Atoi(m[1])
		if err != nil {
			return Timestamp{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		ts := TimestampFromSeconds(float64(total))
		ts.Millis = parseMillis(m[2])
		return ts, nil
	}

	return Timestamp{}, fmt.Errorf("invalid timestamp format %q: expected HH:MM:SS, MM:SS or seconds", s)
}

func newTimestamp(raw string, hours, minutes, seconds, millis int) (Timestamp, error) {
	if minutes > 59 {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: minutes must be 0-59", raw)
	}
	if seconds > 59 {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: seconds must be 0-59", raw)
	}
	return Timestamp{Hours: hours, Minutes: minutes, Seconds: seconds, Millis: millis}, nil
}

// parseMillis turns a 1-3 digit fraction into milliseconds ("5" is 500ms)
func parseMillis(frac string) int {
	if frac == "" {
		return 0
	}
	frac = (frac + "00")[:3]
	ms, _ := strconv.Atoi(frac)
	return ms
}

// TimestampFromSeconds converts a seconds value, rounded to the millisecond
func TimestampFromSeconds(seconds float64) Timestamp {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return Timestamp{}
	}
	total := int64(math.Round(seconds * 1000))
	return Timestamp{
		Hours:   int(total / 3_600_000),
		Minutes: int(total / 60_000 % 60),
		Seconds: int(total / 1000 % 60),
		Millis:  int(total % 1000),
	}
}

// String returns the timestamp in HH:MM:SS format, with .fff when non-zero
func (t Timestamp) String() string {
	if t.Millis > 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%03d", t.Hours, t.Minutes, t.Seconds, t.Millis)
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// TotalSeconds returns the timestamp as fractional seconds
func (t Timestamp) TotalSeconds() float64 {
	whole := t.Hours*3600 + t.Minutes*60 + t.Seconds
	return float64(whole) + float64(t.Millis)/1000
}

// IsZero returns true if the timestamp is 00:00:00
func (t Timestamp) IsZero() bool {
	return t.Hours == 0 && t.Minutes == 0 && t.Seconds == 0 && t.Millis == 0
}

// Before returns true if t is before other
func (t Timestamp) Before(other Timestamp) bool {
	return t.TotalSeconds() < other.TotalSeconds()
}

// After returns true if t is after other
func (t Timestamp) After(other Timestamp) bool {
	return t.TotalSeconds() > other.TotalSeconds()
}
