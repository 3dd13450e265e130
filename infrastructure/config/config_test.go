package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vtrim/domain/video"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
paths:
  source_directory: /videos
  trimmed_directory: /videos/trimmed
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Paths.TrimmedDirectory != "/videos/trimmed" {
		t.Errorf("TrimmedDirectory = %q", cfg.Paths.TrimmedDirectory)
	}
	if cfg.Engine.ChunkSizeBytes != video.DefaultChunkSize {
		t.Errorf("ChunkSizeBytes = %d, want default", cfg.Engine.ChunkSizeBytes)
	}
	if cfg.Engine.FFmpegPath != "ffmpeg" || cfg.Engine.Concurrency != "queue" {
		t.Errorf("engine defaults not applied: %+v", cfg.Engine)
	}
	if cfg.Engine.VerifyInterval != 200*time.Millisecond {
		t.Errorf("VerifyInterval = %v", cfg.Engine.VerifyInterval)
	}
}

func TestLoad_EngineSettings(t *testing.T) {
	path := writeConfig(t, `
engine:
  ffmpeg_path: /usr/local/bin/ffmpeg
  chunk_size_bytes: 1048576
  verify_attempts: 5
  verify_interval: 1s
  concurrency: reject
logging:
  level: debug
  format: json
presets:
  intro:
    start: "00:00:00"
    end: "00:00:30"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Engine.ChunkSizeBytes != 1<<20 || cfg.Engine.VerifyAttempts != 5 || cfg.Engine.VerifyInterval != time.Second {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Engine.Concurrency != "reject" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Presets["intro"].End != "00:00:30" {
		t.Errorf("presets = %+v", cfg.Presets)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad yaml", "paths: [", "failed to parse"},
		{"negative chunk size", "engine:\n  chunk_size_bytes: -1\n", "chunk_size_bytes"},
		{"bad concurrency", "engine:\n  concurrency: parallel\n", "concurrency"},
		{"bad log format", "logging:\n  format: xml\n", "logging.format"},
		{"bad preset", "presets:\n  x:\n    start: \"10\"\n    end: \"5\"\n", "preset \"x\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Defaults()
	cfg.Paths.TrimmedDirectory = "/out"
	cfg.Engine.VerifyInterval = 750 * time.Millisecond

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Paths.TrimmedDirectory != "/out" || loaded.Engine.VerifyInterval != 750*time.Millisecond {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestConfigManager_Presets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Defaults()
	m := NewConfigManager(cfg, path)

	if err := m.AddPreset(" Intro ", "00:00:00", "00:00:30"); err != nil {
		t.Fatalf("AddPreset() error: %v", err)
	}
	if err := m.AddPreset("intro", "0", "1"); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("AddPreset() duplicate error = %v", err)
	}
	if err := m.AddPreset("outro", "00:10:00", "00:05:00"); !errors.Is(err, video.ErrInvalidRange) {
		t.Errorf("AddPreset() invalid range error = %v", err)
	}
	if err := m.AddPreset("", "0", "1"); err == nil {
		t.Error("AddPreset() expected error for empty key")
	}

	p, err := m.GetPreset("INTRO")
	if err != nil {
		t.Fatalf("GetPreset() error: %v", err)
	}
	r, err := p.Range()
	if err != nil || r.End != 30 {
		t.Errorf("Range() = %+v, %v", r, err)
	}

	if err := m.UpdatePreset("intro", "", "00:00:45"); err != nil {
		t.Fatalf("UpdatePreset() error: %v", err)
	}
	if err := m.UpdatePreset("intro", "00:01:00", ""); !errors.Is(err, video.ErrInvalidRange) {
		t.Errorf("UpdatePreset() error = %v, want ErrInvalidRange", err)
	}

	_ = m.AddPreset("credits", "01:00:00", "01:02:00")
	list := m.ListPresets()
	if len(list) != 2 || list[0].Key != "credits" || list[1].End != "00:00:45" {
		t.Errorf("ListPresets() = %+v", list)
	}

	saved, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if saved.Presets["intro"].End != "00:00:45" {
		t.Errorf("preset not persisted: %+v", saved.Presets)
	}

	if err := m.RemovePreset("intro"); err != nil {
		t.Fatalf("RemovePreset() error: %v", err)
	}
	if _, err := m.GetPreset("intro"); !errors.Is(err, ErrPresetNotFound) {
		t.Errorf("GetPreset() after remove error = %v", err)
	}
	if err := m.RemovePreset("intro"); !errors.Is(err, ErrPresetNotFound) {
		t.Errorf("RemovePreset() twice error = %v", err)
	}
	if err := m.UpdatePreset("missing", "1", "2"); !errors.Is(err, ErrPresetNotFound) {
		t.Errorf("UpdatePreset() missing error = %v", err)
	}
}

func TestSuggestAddPresetCommand(t *testing.T) {
	if got := SuggestAddPresetCommand("intro"); !strings.Contains(got, "preset add --key intro") {
		t.Errorf("SuggestAddPresetCommand() = %q", got)
	}
}
