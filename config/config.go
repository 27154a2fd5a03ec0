// Package config holds the server configuration, loaded from an optional
// YAML file with environment overrides on top.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all dim-editor configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Files   FilesConfig   `yaml:"files"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// FilesConfig points at the exported files. When DimensionFile is empty
// the server discovers the first .txt file in DataDir; when PresetFile is
// empty the preset path is derived from the dimension file name.
type FilesConfig struct {
	DataDir       string `yaml:"data_dir"`
	DimensionFile string `yaml:"dimension_file"`
	PresetFile    string `yaml:"preset_file"`
}

// WatchConfig configures the external-change watcher on the dimension file.
type WatchConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Debounce string `yaml:"debounce"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8080"},
		Files:   FilesConfig{DataDir: "."},
		Watch:   WatchConfig{Enabled: true, Debounce: "500ms"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path (when non-empty) over the defaults, then applies env
// overrides. A missing file at an explicitly given path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	if _, err := cfg.DebounceDuration(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv keeps the PORT-style overrides the server always honored.
func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.Files.DataDir = v
	}
	if v := os.Getenv("DIMENSION_FILE"); v != "" {
		c.Files.DimensionFile = v
	}
	if v := os.Getenv("PRESET_FILE"); v != "" {
		c.Files.PresetFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// DebounceDuration parses the watch debounce interval.
func (c Config) DebounceDuration() (time.Duration, error) {
	if c.Watch.Debounce == "" {
		return 500 * time.Millisecond, nil
	}
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, fmt.Errorf("parse watch debounce: %w", err)
	}
	return d, nil
}
