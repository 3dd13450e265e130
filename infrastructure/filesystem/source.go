package filesystem

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"vtrim/domain/video"
)

// containerTypes covers video containers the platform MIME table may not know
var containerTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
	".ts":   "video/mp2t",
	".flv":  "video/x-flv",
}

// SourceLoader reads source media from the host filesystem
type SourceLoader struct{}

// NewSourceLoader creates a new SourceLoader
func NewSourceLoader() *SourceLoader {
	return &SourceLoader{}
}

// Load reads the file at path into a SourceMedia
func (l *SourceLoader) Load(path string) (video.SourceMedia, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return video.SourceMedia{}, fmt.Errorf("failed to read source: %w", err)
	}

	return video.SourceMedia{
		Name:     filepath.Base(path),
		MIMEType: DetectMIMEType(path, data),
		Data:     data,
	}, nil
}

// DetectMIMEType guesses the MIME type from the extension, falling back to content sniffing
func DetectMIMEType(path string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := containerTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
