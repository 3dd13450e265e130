package config

import (
	"fmt"
	"os"
	"time"

	"vtrim/domain/video"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Paths   PathsConfig             `yaml:"paths"`
	Engine  EngineConfig            `yaml:"engine"`
	Logging LoggingConfig           `yaml:"logging"`
	Metrics MetricsConfig           `yaml:"metrics"`
	Presets map[string]PresetConfig `yaml:"presets,omitempty"`
}

// PathsConfig contains directory paths for media processing
type PathsConfig struct {
	SourceDirectory  string `yaml:"source_directory"`
	TrimmedDirectory string `yaml:"trimmed_directory"`
}

// EngineConfig contains transcoding engine and pipeline settings
type EngineConfig struct {
	FFmpegPath     string        `yaml:"ffmpeg_path"`
	FFprobePath    string        `yaml:"ffprobe_path"`
	WorkDirectory  string        `yaml:"work_directory"`
	ChunkSizeBytes int           `yaml:"chunk_size_bytes"`
	VerifyAttempts int           `yaml:"verify_attempts"`
	VerifyInterval time.Duration `yaml:"verify_interval"`
	Concurrency    string        `yaml:"concurrency"`
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig contains metrics output settings
type MetricsConfig struct {
	// Textfile is written after each trim when set (node exporter textfile format)
	Textfile string `yaml:"textfile"`
}

// PresetConfig is a named trim range
type PresetConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Defaults returns a configuration with every optional field populated
func Defaults() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued optional fields
func (c *Config) ApplyDefaults() {
	if c.Engine.FFmpegPath == "" {
		c.Engine.FFmpegPath = "ffmpeg"
	}
	if c.Engine.FFprobePath == "" {
		c.Engine.FFprobePath = "ffprobe"
	}
	if c.Engine.ChunkSizeBytes == 0 {
		c.Engine.ChunkSizeBytes = video.DefaultChunkSize
	}
	if c.Engine.VerifyAttempts == 0 {
		c.Engine.VerifyAttempts = 3
	}
	if c.Engine.VerifyInterval == 0 {
		c.Engine.VerifyInterval = 200 * time.Millisecond
	}
	if c.Engine.Concurrency == "" {
		c.Engine.Concurrency = "queue"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate checks values that would make the pipeline misbehave
func (c *Config) Validate() error {
	if c.Engine.ChunkSizeBytes <= 0 {
		return fmt.Errorf("engine.chunk_size_bytes must be positive, got %d", c.Engine.ChunkSizeBytes)
	}
	if c.Engine.VerifyAttempts <= 0 {
		return fmt.Errorf("engine.verify_attempts must be positive, got %d", c.Engine.VerifyAttempts)
	}
	if c.Engine.VerifyInterval < 0 {
		return fmt.Errorf("engine.verify_interval must not be negative")
	}
	switch c.Engine.Concurrency {
	case "queue", "reject":
	default:
		return fmt.Errorf("engine.concurrency must be \"queue\" or \"reject\", got %q", c.Engine.Concurrency)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	for key, p := range c.Presets {
		if _, err := video.ParseTrimRange(p.Start, p.End); err != nil {
			return fmt.Errorf("preset %q: %w", key, err)
		}
	}
	return nil
}

// Load reads and parses the configuration from the specified YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
