// Package config provides the JSON configuration shared by the cpdh tools.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const configFile = "config.json"

// Solver names accepted in Config.Solver.
const (
	SolverFlow = "flow"
	SolverLP   = "lp"
)

// Tracer names accepted in Config.Tracer.
const (
	TracerGo   = "go"
	TracerGocv = "gocv"
)

// Config holds the settings for building and matching data sets.
type Config struct {
	// DatasetDir holds the "<dir> data set <n>.txt" files.
	DatasetDir string `json:"dataset_dir"`

	// PointCounts lists the sample sizes a data set is built for.
	PointCounts []int `json:"point_counts"`

	Threshold            uint8   `json:"threshold"`
	NearDuplicateEpsilon float64 `json:"near_duplicate_epsilon"`
	Workers              int     `json:"workers"`
	Solver               string  `json:"solver"`
	Tracer               string  `json:"tracer"`
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	if len(c.PointCounts) == 0 {
		c.PointCounts = []int{50, 100, 250}
	}
	if c.Threshold == 0 {
		c.Threshold = 210
	}
	if c.NearDuplicateEpsilon <= 0 {
		c.NearDuplicateEpsilon = 0.0005
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Solver == "" {
		c.Solver = SolverFlow
	}
	if c.Tracer == "" {
		c.Tracer = TracerGo
	}
}

// Validate checks the fields that have no sensible fallback.
func (c *Config) Validate() error {
	for _, n := range c.PointCounts {
		if n <= 0 {
			return fmt.Errorf("invalid point count %d", n)
		}
	}
	switch c.Solver {
	case SolverFlow, SolverLP:
	default:
		return fmt.Errorf("unknown solver %q", c.Solver)
	}
	switch c.Tracer {
	case TracerGo, TracerGocv:
	default:
		return fmt.Errorf("unknown tracer %q", c.Tracer)
	}
	return nil
}

// DefaultPath returns ~/.config/cpdh/config.json, creating the directory.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}

	dir := filepath.Join(configDir, "cpdh")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads a configuration file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// Save writes the configuration to path. The file is replaced atomically.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
