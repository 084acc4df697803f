package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the service needs at startup. Values come from an
// optional YAML file (SALESIM_CONFIG) with environment variables on top.
type Config struct {
	Port string `yaml:"port"`

	StorageBackend string `yaml:"storage_backend"` // "memory", "sqlite" or "redis"
	SQLitePath     string `yaml:"sqlite_path"`

	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisTTL      time.Duration `yaml:"redis_ttl"` // 0 = keep forever

	// Persona responder backend. An empty API key is not an error: the
	// responder then runs on the deterministic fallback.
	DeepSeekAPIKey   string        `yaml:"deepseek_api_key"`
	DeepSeekBaseURL  string        `yaml:"deepseek_base_url"`
	ModelName        string        `yaml:"model_name"`
	ResponderTimeout time.Duration `yaml:"responder_timeout"`

	UseMockLLM bool `yaml:"use_mock_llm"` // true = canned chat client, useful for dev
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

func defaults() *Config {
	return &Config{
		Port:             "8080",
		StorageBackend:   "memory",
		SQLitePath:       "salesim.db",
		RedisAddr:        "localhost:6379",
		DeepSeekBaseURL:  "https://api.deepseek.com/v1",
		ModelName:        "deepseek-chat",
		ResponderTimeout: 30 * time.Second,
	}
}

// Load builds the config: defaults, then the YAML file named by
// SALESIM_CONFIG (if any), then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("SALESIM_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.Port = getEnv("SALESIM_PORT", cfg.Port)
	cfg.StorageBackend = getEnv("SALESIM_STORAGE_BACKEND", cfg.StorageBackend)
	cfg.SQLitePath = getEnv("SALESIM_SQLITE_PATH", cfg.SQLitePath)
	cfg.RedisAddr = getEnv("SALESIM_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("SALESIM_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getIntEnv("SALESIM_REDIS_DB", cfg.RedisDB)
	cfg.RedisTTL = getDurationEnv("SALESIM_REDIS_TTL", cfg.RedisTTL)
	cfg.DeepSeekAPIKey = getEnv("DEEPSEEK_API_KEY", cfg.DeepSeekAPIKey)
	cfg.DeepSeekBaseURL = getEnv("DEEPSEEK_API_BASE_URL", cfg.DeepSeekBaseURL)
	cfg.ModelName = getEnv("SALESIM_MODEL_NAME", cfg.ModelName)
	cfg.ResponderTimeout = getDurationEnv("SALESIM_RESPONDER_TIMEOUT", cfg.ResponderTimeout)
	cfg.UseMockLLM = getBoolEnv("SALESIM_USE_MOCK_LLM", cfg.UseMockLLM)

	switch cfg.StorageBackend {
	case "memory", "sqlite", "redis":
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	return cfg, nil
}
