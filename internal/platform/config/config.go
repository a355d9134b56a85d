// Package config loads application configuration from environment
// variables and the optional generation profile file. All variables use
// the PAPER_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	Groq        GroqConfig
	Embedding   EmbeddingConfig
	Log         LogConfig
	PastPapers  string // directory of historical papers, optional
	ProfilePath string // generation profile YAML, optional
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL means
// the in-memory knowledge store is used instead.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Dragonfly/Redis connection settings. An empty URL
// disables embedding caching.
type CacheConfig struct {
	URL string
}

// GroqConfig holds the generation service settings.
type GroqConfig struct {
	APIKey         string
	BaseURL        string // empty uses the public endpoint
	ParserModel    string
	GeneratorModel string
}

// EmbeddingConfig holds the Ollama embedding service settings.
type EmbeddingConfig struct {
	Enabled bool
	URL     string
	Model   string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with PAPER_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("PAPER_SERVER_PORT", 8080),
			Host: envStr("PAPER_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("PAPER_DATABASE_URL", ""),
			MaxConns: envInt("PAPER_DATABASE_MAX_CONNS", 25),
			MinConns: envInt("PAPER_DATABASE_MIN_CONNS", 5),
		},
		Cache: CacheConfig{
			URL: envStr("PAPER_CACHE_URL", ""),
		},
		Groq: GroqConfig{
			APIKey:         envStr("PAPER_GROQ_API_KEY", ""),
			BaseURL:        envStr("PAPER_GROQ_BASE_URL", ""),
			ParserModel:    envStr("PAPER_GROQ_PARSER_MODEL", ""),
			GeneratorModel: envStr("PAPER_GROQ_GENERATOR_MODEL", ""),
		},
		Embedding: EmbeddingConfig{
			Enabled: envBool("PAPER_EMBEDDING_ENABLED", true),
			URL:     envStr("PAPER_EMBEDDING_URL", "http://localhost:11434"),
			Model:   envStr("PAPER_EMBEDDING_MODEL", "nomic-embed-text"),
		},
		Log: LogConfig{
			Level:  envStr("PAPER_LOG_LEVEL", "info"),
			Format: envStr("PAPER_LOG_FORMAT", "json"),
		},
		PastPapers:  envStr("PAPER_PAST_PAPERS_DIR", ""),
		ProfilePath: envStr("PAPER_PROFILE_PATH", ""),
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Groq.APIKey == "" {
		return fmt.Errorf("PAPER_GROQ_API_KEY is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PAPER_SERVER_PORT out of range: %d", c.Server.Port)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
