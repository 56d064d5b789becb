// Package config loads semforge settings from an optional YAML file with
// environment overrides. Precedence: defaults, then file, then SEMFORGE_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDatasetsRoot     = "datasets"
	DefaultRegistryPath     = ".semforge/registry"
	DefaultVectorPath       = ".semforge/vector"
	DefaultVectorCollection = "semantic-types"
	DefaultSampleLimit      = 2000
)

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Config captures user-configurable settings shared across commands.
type Config struct {
	DatasetsRoot     string    `json:"datasets_root" yaml:"datasets_root"`
	RegistryPath     string    `json:"registry_path" yaml:"registry_path"`
	VectorPath       string    `json:"vector_path" yaml:"vector_path"`
	VectorCollection string    `json:"vector_collection" yaml:"vector_collection"`
	SampleLimit      int       `json:"sample_limit" yaml:"sample_limit"`
	Log              LogConfig `json:"log" yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DatasetsRoot:     DefaultDatasetsRoot,
		RegistryPath:     DefaultRegistryPath,
		VectorPath:       DefaultVectorPath,
		VectorCollection: DefaultVectorCollection,
		SampleLimit:      DefaultSampleLimit,
		Log:              LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path when non-empty, then applies environment overrides. A
// missing explicit file is an error; an empty path just means defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("SEMFORGE_DATASETS_ROOT"); ok {
		cfg.DatasetsRoot = v
	}
	if v, ok := lookup("SEMFORGE_REGISTRY_PATH"); ok {
		cfg.RegistryPath = v
	}
	if v, ok := lookup("SEMFORGE_VECTOR_PATH"); ok {
		cfg.VectorPath = v
	}
	if v, ok := lookup("SEMFORGE_VECTOR_COLLECTION"); ok {
		cfg.VectorCollection = v
	}
	if v, ok := lookup("SEMFORGE_SAMPLE_LIMIT"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("SEMFORGE_SAMPLE_LIMIT: %w", err)
		}
		cfg.SampleLimit = n
	}
	if v, ok := lookup("SEMFORGE_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookup("SEMFORGE_LOG_FORMAT"); ok {
		cfg.Log.Format = v
	}
	return nil
}

func (c *Config) normalize() {
	if c.SampleLimit <= 0 {
		c.SampleLimit = DefaultSampleLimit
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
