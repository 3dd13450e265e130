package video

import (
	"mime"
	"path/filepath"
	"strings"
)

// SourceMedia is the raw file handed to the pipeline for one trim
type SourceMedia struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Size returns the source length in bytes
func (m SourceMedia) Size() int64 {
	return int64(len(m.Data))
}

// Extension returns the container extension (without dot) used to name
// virtual files, so the engine can infer the format from the name.
func (m SourceMedia) Extension() string {
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(m.Name)), "."); ext != "" {
		return ext
	}

	if exts, err := mime.ExtensionsByType(m.MIMEType); err == nil && len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}

	if _, sub, ok := strings.Cut(m.MIMEType, "/"); ok && sub != "" {
		sub, _, _ = strings.Cut(sub, ";")
		return strings.TrimSpace(sub)
	}

	return "mp4"
}

// TrimResult is the output of a successful trim
type TrimResult struct {
	Data     []byte
	MIMEType string
	Range    TrimRange
}

// Size returns the output length in bytes
func (r *TrimResult) Size() int64 {
	return int64(len(r.Data))
}
