// Package config provides configuration loading and management for mrcio.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"mrcio/internal/logging"
	"mrcio/pkg/mrc"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Writer parameters applied to every file mrcio creates
	Writer struct {
		// PixelSize is the sampling in length units per pixel used when no
		// header is carried over from an input file
		PixelSize float64 `yaml:"pixelSize"`

		// Label is recorded as the first text label of new headers
		Label string `yaml:"label"`

		// ByteOrder is "native", "little" or "big"
		ByteOrder string `yaml:"byteOrder"`
	} `yaml:"writer"`

	// Export parameters for slice images
	Export struct {
		// JPEGQuality is the quality of exported slice images (1-100)
		JPEGQuality int `yaml:"jpegQuality"`

		// SlicesDir is the directory slice images are written to
		SlicesDir string `yaml:"slicesDir"`
	} `yaml:"export"`

	// Output parameters
	Output struct {
		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`

		// Log selects an optional rotating log file
		Log logging.LogConfig `yaml:"log"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Writer.PixelSize = 1.0
	cfg.Writer.Label = mrc.DefaultLabel
	cfg.Writer.ByteOrder = "native"

	cfg.Export.JPEGQuality = 90
	cfg.Export.SlicesDir = "slices"

	cfg.Output.Verbose = false
	cfg.Output.Log.MaxSize = 100
	cfg.Output.Log.MaxAge = 30

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if _, err := cfg.ByteOrder(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// ByteOrder returns the configured write byte order; nil means native.
func (c *Config) ByteOrder() (binary.ByteOrder, error) {
	switch strings.ToLower(c.Writer.ByteOrder) {
	case "", "native":
		return nil, nil
	case "little":
		return binary.LittleEndian, nil
	case "big":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("invalid byte order %q (must be native, little or big)", c.Writer.ByteOrder)
	}
}

// WriteOptions converts the writer section into codec write options. An
// invalid byte order is logged and the native order used.
func (c *Config) WriteOptions() []mrc.WriteOption {
	opts := []mrc.WriteOption{
		mrc.WithPixelSize(c.Writer.PixelSize),
		mrc.WithLabel(c.Writer.Label),
	}
	order, err := c.ByteOrder()
	if err != nil {
		logging.Warningf("ignoring writer byte order: %v", err)
	} else if order != nil {
		opts = append(opts, mrc.WithByteOrder(order))
	}
	return opts
}
