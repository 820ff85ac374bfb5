// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the engine configuration file and per-profile
// detection rules (blocklist, grantlist, regex patterns, NER label subset).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// Default settings
	Defaults struct {
		Format  string   `yaml:"format"`
		Profile string   `yaml:"profile"`
		Labels  []string `yaml:"labels"`
		Verbose bool     `yaml:"verbose"`
		Debug   bool     `yaml:"debug"`
		NoColor bool     `yaml:"no_color"`
	} `yaml:"defaults"`

	// ConfigDir is the root of the per-profile configuration tree.
	ConfigDir string `yaml:"config_dir"`

	// LabelMappings overrides the global label-mapping file path.
	// Empty means <config_dir>/label_mappings.txt.
	LabelMappings string `yaml:"label_mappings"`

	// NER provider settings
	NER struct {
		Endpoint       string  `yaml:"endpoint"`
		Threshold      float64 `yaml:"threshold"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"ner"`

	// Server settings for the web API
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// DefaultNERLabels are the detection labels used when neither the caller nor
// the active profile requests a specific set.
var DefaultNERLabels = []string{
	"person_ner",
	"phone_number_ner",
	"email_ner",
	"address_ner",
}

// LoadConfig loads configuration from the specified file path. An empty path
// returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	// Set default values
	config.Defaults.Format = "text"
	config.Defaults.Profile = "default"
	config.ConfigDir = "config"
	config.NER.Endpoint = "http://localhost:8001"
	config.NER.Threshold = 0.3
	config.NER.TimeoutSeconds = 30
	config.Server.Port = "8080"

	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches
// standard locations when configFile is empty). If loading fails, it returns
// a default configuration. This is the shared helper used by both the CLI
// and the web server.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		// Fall back to defaults — callers should not crash on a bad config file.
		cfg, _ = LoadConfig("")
	}
	return cfg
}

// FindConfigFile looks for a configuration file in standard locations.
func FindConfigFile() string {
	// Check current directory first
	for _, name := range []string{"config.yaml", "anonymizer.yaml", "anonymizer.yml", ".text-anonymizer.yaml"} {
		if fileExists(name) {
			return name
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	// Check XDG config directory
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		candidate := filepath.Join(xdgConfig, "text-anonymizer", name)
		if fileExists(candidate) {
			return candidate
		}
	}

	return ""
}

// ValidateConfig validates configuration values that would otherwise fail
// deep inside a detection call.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if config.NER.Threshold < 0 || config.NER.Threshold > 1 {
		return fmt.Errorf("ner.threshold must be in [0,1], got %v", config.NER.Threshold)
	}
	if config.NER.TimeoutSeconds <= 0 {
		return fmt.Errorf("ner.timeout_seconds must be positive, got %d", config.NER.TimeoutSeconds)
	}
	return nil
}

// LabelMappingsPath returns the effective global label-mapping file path.
func (c *Config) LabelMappingsPath() string {
	if c.LabelMappings != "" {
		return c.LabelMappings
	}
	return filepath.Join(c.ConfigDir, "label_mappings.txt")
}

// fileExists checks if a file exists and is not a directory.
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
