package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "./data/FoodDataSet.json"
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "hash"
	}
	if cfg.Embedding.Dimensions == 0 {
		if cfg.Embedding.Provider == "gemini" {
			cfg.Embedding.Dimensions = 768
		} else {
			cfg.Embedding.Dimensions = 384
		}
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.ModelName == "" {
		switch cfg.Embedding.Provider {
		case "gemini":
			cfg.Embedding.ModelName = "text-embedding-004"
		default:
			cfg.Embedding.ModelName = "all-MiniLM-L6-v2"
		}
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.Embedding.Cache == "" {
		cfg.Embedding.Cache = "memory"
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.RedisAddr == "" {
		cfg.Embedding.RedisAddr = "localhost:6379"
	}

	if cfg.Index.Backend == "" {
		cfg.Index.Backend = "memory"
	}
	if cfg.Index.DatabasePath == "" {
		cfg.Index.DatabasePath = ":memory:"
	}
	if cfg.Index.QdrantHost == "" {
		cfg.Index.QdrantHost = "localhost"
	}
	if cfg.Index.QdrantPort == 0 {
		cfg.Index.QdrantPort = 6334
	}
	if cfg.Index.WeaviateHost == "" {
		cfg.Index.WeaviateHost = "localhost:8080"
	}
	if cfg.Index.WeaviateScheme == "" {
		cfg.Index.WeaviateScheme = "http"
	}

	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 5
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.FilterPoolMultiplier == 0 {
		cfg.Search.FilterPoolMultiplier = 4
	}
	if cfg.Search.FilterPoolFloor == 0 {
		cfg.Search.FilterPoolFloor = 20
	}

	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = "none"
	}
	if cfg.Generation.Model == "" {
		switch cfg.Generation.Provider {
		case "gemini":
			cfg.Generation.Model = "gemini-1.5-flash"
		case "openai":
			cfg.Generation.Model = "gpt-4o-mini"
		}
	}
	if cfg.Generation.BaseURL == "" && cfg.Generation.Provider == "openai" {
		cfg.Generation.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Generation.APIKeyEnv == "" {
		switch cfg.Generation.Provider {
		case "gemini":
			cfg.Generation.APIKeyEnv = "GEMINI_API_KEY"
		case "openai":
			cfg.Generation.APIKeyEnv = "OPENAI_API_KEY"
		}
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = 400
	}
	if cfg.Generation.Temperature == 0 {
		cfg.Generation.Temperature = 0.7
	}
	if cfg.Generation.TopP == 0 {
		cfg.Generation.TopP = 0.9
	}
	if cfg.Generation.MaxRetries == 0 {
		cfg.Generation.MaxRetries = 2
	}
	if cfg.Generation.Timeout == 0 {
		cfg.Generation.Timeout = 60 * time.Second
	}
}
