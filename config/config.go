// Package config loads the helix configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/luca-patrignani/helix/domain/digest"
)

const DefaultPath = "helix.yaml"

type Config struct {
	DataDir             string `yaml:"data_dir"`
	LogLevel            string `yaml:"log_level"`
	SimilarityThreshold int    `yaml:"similarity_threshold"`
	MetricsAddr         string `yaml:"metrics_addr"`
	DigestSuite         string `yaml:"digest_suite"`
}

func Default() Config {
	return Config{
		DataDir:             "./helix-data",
		LogLevel:            "info",
		SimilarityThreshold: 8,
		DigestSuite:         digest.DefaultSuite,
	}
}

// Load reads path over the defaults. A missing file is only an error when
// path is not DefaultPath or empty.
func Load(path string) (Config, error) {
	config := Default()
	explicit := path != "" && path != DefaultPath
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return config, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return config, config.Validate()
}

func (c Config) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 64 {
		return fmt.Errorf("similarity_threshold must be within [0, 64], got %d", c.SimilarityThreshold)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := digest.NewWithSuite(c.DigestSuite); err != nil {
		return err
	}
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	return nil
}

// ParseLevel accepts debug, info, warn and error in any case.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}
