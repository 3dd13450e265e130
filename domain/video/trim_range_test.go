package video

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestNewTrimRange(t *testing.T) {
	tests := []struct {
		name        string
		start       float64
		end         float64
		wantErr     bool
		errContains string
	}{
		{name: "valid range", start: 5, end: 15},
		{name: "starts at zero", start: 0, end: 0.5},
		{name: "end before start", start: 10, end: 5, wantErr: true, errContains: "must be after start time"},
		{name: "end equals start", start: 10, end: 10, wantErr: true, errContains: "must be after start time"},
		{name: "negative start", start: -1, end: 5, wantErr: true, errContains: "negative"},
		{name: "NaN end", start: 0, end: math.NaN(), wantErr: true, errContains: "finite"},
		{name: "infinite end", start: 0, end: math.Inf(1), wantErr: true, errContains: "finite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTrimRange(tt.start, tt.end)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewTrimRange() expected error, got %v", got)
				}
				if !errors.Is(err, ErrInvalidRange) {
					t.Errorf("NewTrimRange() error = %v, want ErrInvalidRange", err)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewTrimRange() error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewTrimRange() unexpected error: %v", err)
			}
			if got.Duration() != tt.end-tt.start {
				t.Errorf("Duration() = %v, want %v", got.Duration(), tt.end-tt.start)
			}
		})
	}
}

func TestParseTrimRange(t *testing.T) {
	r, err := ParseTrimRange("00:00:05", "15")
	if err != nil {
		t.Fatalf("ParseTrimRange() unexpected error: %v", err)
	}
	if r.Start != 5 || r.End != 15 {
		t.Errorf("ParseTrimRange() = %+v, want {5 15}", r)
	}
	if r.String() != "00:00:05-00:00:15" {
		t.Errorf("String() = %q", r.String())
	}

	if _, err := ParseTrimRange("bogus", "15"); err == nil || !strings.Contains(err.Error(), "invalid start time") {
		t.Errorf("ParseTrimRange() error = %v, want invalid start time", err)
	}

	if _, err := ParseTrimRange("10", "nope"); err == nil || !strings.Contains(err.Error(), "invalid end time") {
		t.Errorf("ParseTrimRange() error = %v, want invalid end time", err)
	}

	if _, err := ParseTrimRange("10", "5"); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("ParseTrimRange() error = %v, want ErrInvalidRange", err)
	}
}
