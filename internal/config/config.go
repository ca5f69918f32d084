// Package config provides configuration loading and structs for foodrec.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Index      IndexConfig      `yaml:"index"`
	Search     SearchConfig     `yaml:"search"`
	Generation GenerationConfig `yaml:"generation"`
}

// CatalogConfig points at the food catalog JSON file.
type CatalogConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// EmbeddingConfig selects and tunes the embedding backend.
type EmbeddingConfig struct {
	// Provider is one of "hash", "onnx", "gemini".
	Provider  string `yaml:"provider"`
	ModelPath string `yaml:"model_path"`
	// VocabPath is the WordPiece vocab.txt exported with an onnx model. When empty
	// the onnx provider hashes words into token ids instead of looking them up,
	// so a stock sentence-transformer sees ids it was never trained on.
	VocabPath  string `yaml:"vocab_path"`
	ModelName  string `yaml:"model_name"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	APIKeyEnv  string `yaml:"api_key_env"`

	// Cache is one of "memory", "redis", "none".
	Cache         string `yaml:"cache"`
	CacheSize     int    `yaml:"cache_size"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// IndexConfig selects the similarity index backend.
type IndexConfig struct {
	// Backend is one of "memory", "qdrant", "weaviate".
	Backend        string `yaml:"backend"`
	DatabasePath   string `yaml:"database_path"`
	QdrantHost     string `yaml:"qdrant_host"`
	QdrantPort     int    `yaml:"qdrant_port"`
	WeaviateHost   string `yaml:"weaviate_host"`
	WeaviateScheme string `yaml:"weaviate_scheme"`
}

// SearchConfig holds retrieval and filtering settings.
type SearchConfig struct {
	DefaultLimit         int `yaml:"default_limit"`
	MaxLimit             int `yaml:"max_limit"`
	FilterPoolMultiplier int `yaml:"filter_pool_multiplier"`
	FilterPoolFloor      int `yaml:"filter_pool_floor"`
	// SimilarityThreshold drops results scoring below it. Zero keeps everything.
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// GenerationConfig holds text generation settings for the chat command.
type GenerationConfig struct {
	// Provider is one of "none", "gemini", "openai".
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	APIKeyEnv   string        `yaml:"api_key_env"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	TopP        float64       `yaml:"top_p"`
	MaxRetries  int           `yaml:"max_retries"`
	Timeout     time.Duration `yaml:"timeout"`
}

// APIKey resolves the generation API key from the configured environment variable.
func (g GenerationConfig) APIKey() string {
	if g.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(g.APIKeyEnv)
}

// APIKey resolves the embedding API key from the configured environment variable.
func (e EmbeddingConfig) APIKey() string {
	if e.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(e.APIKeyEnv)
}

// Default returns a config with every default applied.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// Load reads and parses the config file at path, applies defaults, and expands paths.
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
	cfg.Catalog.Path = expandPath(cfg.Catalog.Path, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}
	if cfg.Index.DatabasePath != ":memory:" {
		cfg.Index.DatabasePath = expandPath(cfg.Index.DatabasePath, configDir)
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
// "~/" paths are relative to the home directory. Anything else is left alone.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
