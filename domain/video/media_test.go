package video

import (
	"errors"
	"fmt"
	"testing"
)

func TestSourceMedia_Extension(t *testing.T) {
	tests := []struct {
		name  string
		media SourceMedia
		want  string
	}{
		{name: "from file name", media: SourceMedia{Name: "clip.MOV", MIMEType: "video/quicktime"}, want: "mov"},
		{name: "from mime subtype", media: SourceMedia{MIMEType: "video/x-unknown-container"}, want: "x-unknown-container"},
		{name: "mime parameters ignored", media: SourceMedia{MIMEType: "video/x-foo; codecs=avc1"}, want: "x-foo"},
		{name: "nothing known", media: SourceMedia{}, want: "mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.media.Extension(); got != tt.want {
				t.Errorf("Extension() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.New("plain"), ""},
		{ErrInvalidRange, "invalid_range"},
		{fmt.Errorf("wrapped: %w", ErrNotFound), "not_found"},
		{&StepError{Step: "Reassembling", Err: ErrEmptyInput}, "empty_input"},
		{fmt.Errorf("%w: %w", ErrEngineInvocationFailed, errors.New("exit status 1")), "engine_invocation_failed"},
	}

	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestStepError(t *testing.T) {
	err := &StepError{Step: "VerifyingOutput", Err: fmt.Errorf("%w: out.mp4", ErrNotFound)}

	if err.Error() != "VerifyingOutput: virtual file not found: out.mp4" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected StepError to unwrap to ErrNotFound")
	}
}
