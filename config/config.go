// Package config provides a flexible configuration management system for
// the ragline RAG data plane. It handles configuration loading and
// persistence (it does not validate the loaded values), with support for
// multiple sources:
//   - Configuration files (JSON)
//   - Environment variables
//   - Programmatic defaults
//
// The package implements a hierarchical configuration system where settings
// can be overridden in the following order (highest to lowest precedence):
//  1. Environment variables
//  2. Configuration file
//  3. Default values
//
// It is application glue, not a library dependency: internal/ragcore's
// components take their configuration entirely through functional options
// and never read from this package or from the environment directly.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config holds the settings a driver program needs to wire up a Pipeline
// and QueryService: the database connection, the target table, the
// embedding provider, and operational defaults for chunking and ingestion.
type Config struct {
	// Database settings
	ConnString string // Postgres/pgvector connection string
	Table       string // Target chunk table name

	// Provider settings configure the embedding provider
	Provider string            // Embedder provider name (e.g., "openai")
	Model    string            // Model identifier for embeddings
	APIKeys  map[string]string // API keys for different providers

	// Document processing settings
	DefaultMaxLines     int // Chunker window size, in lines
	DefaultOverlapLines int // Chunker overlap, in lines
	DefaultMaxChunkSize int // Chunker character cap per chunk
	DefaultBatchSize    int // Chunks embedded per EmbedBatch call

	// Query defaults
	DefaultTopK     int     // Default number of results to return
	DefaultMinScore float64 // Minimum similarity score threshold

	// Timeouts and retries for system operations
	Timeout    time.Duration // Operation timeout
	MaxRetries int           // Maximum retry attempts

	// LogLevel controls the verbosity of the package-wide default logger
	// ("off", "error", "warn", "info", "debug").
	LogLevel string
}

// LoadConfig loads configuration from multiple sources, combining them
// according to the precedence rules. It automatically searches for
// configuration files in standard locations and applies environment
// variable overrides.
//
// Configuration file search paths:
//  1. $RAGLINE_CONFIG environment variable
//  2. ~/.ragline/config.json
//  3. ~/.config/ragline/config.json
//  4. ./ragline.json
//
// Environment variable overrides:
//   - RAGLINE_CONN_STRING: Postgres connection string
//   - RAGLINE_TABLE: Target chunk table name
//   - RAGLINE_PROVIDER: Embedder provider name
//   - RAGLINE_MODEL: Embedding model identifier
//   - RAGLINE_API_KEY: Default API key for the configured provider
//   - RAGLINE_LOG_LEVEL: Logger verbosity
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Table:               "document_chunks",
		Provider:            "openai",
		Model:               "text-embedding-3-small",
		DefaultMaxLines:     150,
		DefaultOverlapLines: 30,
		DefaultMaxChunkSize: 10000,
		DefaultBatchSize:    32,
		DefaultTopK:         5,
		DefaultMinScore:     0,
		Timeout:             30 * time.Second,
		MaxRetries:          3,
		LogLevel:            "info",
		APIKeys:             make(map[string]string),
	}

	configFile := os.Getenv("RAGLINE_CONFIG")
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			candidates := []string{
				filepath.Join(home, ".ragline", "config.json"),
				filepath.Join(home, ".config", "ragline", "config.json"),
				"ragline.json",
			}
			for _, candidate := range candidates {
				if _, err := os.Stat(candidate); err == nil {
					configFile = candidate
					break
				}
			}
		}
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	if v := os.Getenv("RAGLINE_CONN_STRING"); v != "" {
		cfg.ConnString = v
	}
	if v := os.Getenv("RAGLINE_TABLE"); v != "" {
		cfg.Table = v
	}
	if v := os.Getenv("RAGLINE_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("RAGLINE_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("RAGLINE_API_KEY"); v != "" {
		cfg.APIKeys[cfg.Provider] = v
	}
	if v := os.Getenv("RAGLINE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// Save persists the configuration to a JSON file at the specified path. It
// creates any necessary parent directories.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
