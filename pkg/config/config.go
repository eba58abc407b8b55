// Package config loads the chronicle process configuration from a YAML
// file: HTTP listen address, corpus root, log level and difficulty.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level chronicle configuration file shape.
type Config struct {
	Addr       string `yaml:"addr"`
	CorpusRoot string `yaml:"corpus_root"`
	LogLevel   string `yaml:"log_level"`
	Level      int    `yaml:"level"`
}

// Default returns a Config with sane defaults: listen on :8080, log at
// info, no corpus configured, difficulty level 2.
func Default() Config {
	return Config{
		Addr:     ":8080",
		LogLevel: "info",
		Level:    2,
	}
}

// ValidLevels are the supported difficulty levels.
var ValidLevels = map[int]bool{2: true, 3: true, 4: true, 5: true}

// Load reads and validates a YAML config file, filling unset fields
// from Default.
func Load(path string) (Config, error) {
	cfg := Default()
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the core-semantic fields config owns.
func (c Config) Validate() error {
	if !ValidLevels[c.Level] {
		return fmt.Errorf("config: level %d is not one of 2,3,4,5", c.Level)
	}
	if c.Addr == "" {
		return fmt.Errorf("config: addr must not be empty")
	}
	return nil
}
