// Package config provides configuration loading and structs for the Quarry server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool                `yaml:"debug"`
	Server  ServerConfig        `yaml:"server"`
	Storage StorageConfig       `yaml:"storage"`
	Search  SearchConfig        `yaml:"search"`
	Import  ImportConfig        `yaml:"import"`
	Kinds   map[string][]string `yaml:"kinds"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database and the search index.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	IndexPath    string `yaml:"index_path"`
}

// SearchConfig holds query execution settings.
type SearchConfig struct {
	// MaxWindow is the result window requested when no pagination bounds apply.
	MaxWindow int `yaml:"max_window"`
	// ReindexBatchSize is how many records are read from storage per batch during a rebuild.
	ReindexBatchSize int `yaml:"reindex_batch_size"`
	// ReindexLogEvery controls rebuild progress logging frequency (records per log line).
	ReindexLogEvery int `yaml:"reindex_log_every"`
}

// ImportConfig holds bulk import settings.
type ImportConfig struct {
	Directory  string   `yaml:"directory"`
	Extensions []string `yaml:"extensions"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)
	if cfg.Import.Directory != "" {
		cfg.Import.Directory = expandPath(cfg.Import.Directory, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
