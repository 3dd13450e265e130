package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"vtrim/domain/video"
)

// Errors for config management
var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrDuplicateKey   = errors.New("key already exists")
)

// ConfigManager provides CRUD operations for config entries
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Preset represents a named trim range entry
type Preset struct {
	Key   string
	Start string
	End   string
}

// Range parses the preset into a validated TrimRange
func (p Preset) Range() (video.TrimRange, error) {
	return video.ParseTrimRange(p.Start, p.End)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// --- Preset CRUD ---

// AddPreset adds a new preset to config
func (m *ConfigManager) AddPreset(key, start, end string) error {
	key = normalizeKey(key)
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)

	if key == "" {
		return fmt.Errorf("preset key is required")
	}
	if _, err := video.ParseTrimRange(start, end); err != nil {
		return fmt.Errorf("preset %q: %w", key, err)
	}

	if m.config.Presets == nil {
		m.config.Presets = make(map[string]PresetConfig)
	}

	if _, exists := m.config.Presets[key]; exists {
		return fmt.Errorf("%w: preset %q", ErrDuplicateKey, key)
	}

	m.config.Presets[key] = PresetConfig{Start: start, End: end}
	return Save(m.config, m.configPath)
}

// ListPresets returns all presets sorted by key
func (m *ConfigManager) ListPresets() []Preset {
	result := make([]Preset, 0, len(m.config.Presets))
	for key, pc := range m.config.Presets {
		result = append(result, Preset{Key: key, Start: pc.Start, End: pc.End})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// GetPreset gets a preset by key (case-insensitive)
func (m *ConfigManager) GetPreset(key string) (Preset, error) {
	key = normalizeKey(key)
	if pc, exists := m.config.Presets[key]; exists {
		return Preset{Key: key, Start: pc.Start, End: pc.End}, nil
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrPresetNotFound, key)
}

// RemovePreset removes a preset by key
func (m *ConfigManager) RemovePreset(key string) error {
	key = normalizeKey(key)
	if _, exists := m.config.Presets[key]; !exists {
		return fmt.Errorf("%w: %q", ErrPresetNotFound, key)
	}

	delete(m.config.Presets, key)
	return Save(m.config, m.configPath)
}

// UpdatePreset updates a preset's start and/or end; empty values keep the current one
func (m *ConfigManager) UpdatePreset(key, start, end string) error {
	key = normalizeKey(key)
	pc, exists := m.config.Presets[key]
	if !exists {
		return fmt.Errorf("%w: %q", ErrPresetNotFound, key)
	}

	if s := strings.TrimSpace(start); s != "" {
		pc.Start = s
	}
	if e := strings.TrimSpace(end); e != "" {
		pc.End = e
	}
	if _, err := video.ParseTrimRange(pc.Start, pc.End); err != nil {
		return fmt.Errorf("preset %q: %w", key, err)
	}

	m.config.Presets[key] = pc
	return Save(m.config, m.configPath)
}

// SuggestAddPresetCommand returns the command that creates a missing preset
func SuggestAddPresetCommand(key string) string {
	return fmt.Sprintf("vtrim preset add --key %s --start HH:MM:SS --end HH:MM:SS", key)
}
