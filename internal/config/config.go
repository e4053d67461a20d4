package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "TALENTTRACK_CONFIG"

// Batch failure policies.
const (
	OnBatchErrorAbort    = "abort"
	OnBatchErrorContinue = "continue"
)

type Config struct {
	DatabaseURL string `yaml:"databaseUrl"`
	Port        string `yaml:"port"`
	Migrate     bool   `yaml:"migrate"`

	LLM    LLMConfig    `yaml:"llm"`
	Ingest IngestConfig `yaml:"ingest"`
}

// LLMConfig describes the completion service used for CV extraction.
type LLMConfig struct {
	Provider  string        `yaml:"provider"` // "openai", "groq", "ollama", "gemini" or "none"
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"apiKey"`
	BaseURL   string        `yaml:"baseUrl"` // empty means the provider default
	MaxTokens int           `yaml:"maxTokens"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheTTL  time.Duration `yaml:"cacheTtl"` // 0 disables the response cache
}

// IngestConfig bounds the CV upload pipeline.
type IngestConfig struct {
	BatchSize      int    `yaml:"batchSize"`
	MaxFiles       int    `yaml:"maxFiles"`
	MaxUploadMB    int64  `yaml:"maxUploadMb"`
	ExtractWorkers int    `yaml:"extractWorkers"`
	OnBatchError   string `yaml:"onBatchError"`
}

// LoadConfig reads .env, an optional YAML file and environment overrides, in that order.
func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
		log.Println("Attempting to load from parent directory...")
		err = godotenv.Load("../../.env")
		if err != nil {
			log.Println("Warning: Could not load .env file, using environment variables")
		}
	}

	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = merge(cfg, *fileCfg)
		}
	}

	cfg.applyEnv()
	return &cfg
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port: "8080",
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			MaxTokens: 4000,
			Timeout:   120 * time.Second,
		},
		Ingest: IngestConfig{
			BatchSize:      5,
			MaxFiles:       50,
			MaxUploadMB:    50,
			ExtractWorkers: 4,
			OnBatchError:   OnBatchErrorAbort,
		},
	}
}

// LoadFile parses a YAML config file.
func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Ingest.BatchSize <= 0 {
		return fmt.Errorf("config error: ingest batch size must be positive")
	}
	if c.Ingest.MaxFiles <= 0 {
		return fmt.Errorf("config error: ingest max files must be positive")
	}
	if c.Ingest.MaxUploadMB <= 0 {
		return fmt.Errorf("config error: ingest max upload size must be positive")
	}
	if c.Ingest.ExtractWorkers <= 0 {
		return fmt.Errorf("config error: ingest extract workers must be positive")
	}
	switch c.Ingest.OnBatchError {
	case OnBatchErrorAbort, OnBatchErrorContinue:
	default:
		return fmt.Errorf("config error: unknown batch error policy %q", c.Ingest.OnBatchError)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("config error: llm max tokens must be positive")
	}
	return nil
}

// LLMEnabled reports whether a completion provider is configured.
func (c *Config) LLMEnabled() bool {
	if c.LLM.Provider == "" || c.LLM.Provider == "none" {
		return false
	}
	// ollama runs locally without a key
	return c.LLM.Provider == "ollama" || c.LLM.APIKey != ""
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v, ok := envBool("DB_MIGRATE"); ok {
		c.Migrate = v
	}

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}

	// Get API key based on provider
	switch c.LLM.Provider {
	case "openai":
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			c.LLM.APIKey = v
		}
	case "groq":
		if v := os.Getenv("GROQ_API_KEY"); v != "" {
			c.LLM.APIKey = v
		}
	case "gemini":
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			c.LLM.APIKey = v
		}
	}

	if v, ok := envInt("LLM_MAX_TOKENS"); ok {
		c.LLM.MaxTokens = v
	}
	if v, ok := envDuration("LLM_TIMEOUT"); ok {
		c.LLM.Timeout = v
	}
	if v, ok := envDuration("LLM_CACHE_TTL"); ok {
		c.LLM.CacheTTL = v
	}

	if v, ok := envInt("INGEST_BATCH_SIZE"); ok {
		c.Ingest.BatchSize = v
	}
	if v, ok := envInt("INGEST_MAX_FILES"); ok {
		c.Ingest.MaxFiles = v
	}
	if v, ok := envInt("INGEST_MAX_UPLOAD_MB"); ok {
		c.Ingest.MaxUploadMB = int64(v)
	}
	if v, ok := envInt("INGEST_EXTRACT_WORKERS"); ok {
		c.Ingest.ExtractWorkers = v
	}
	if v := os.Getenv("INGEST_ON_BATCH_ERROR"); v != "" {
		c.Ingest.OnBatchError = strings.ToLower(strings.TrimSpace(v))
	}
}

func merge(base, override Config) Config {
	if override.DatabaseURL != "" {
		base.DatabaseURL = override.DatabaseURL
	}
	if override.Port != "" {
		base.Port = override.Port
	}
	if override.Migrate {
		base.Migrate = true
	}

	if override.LLM.Provider != "" {
		base.LLM.Provider = override.LLM.Provider
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.BaseURL != "" {
		base.LLM.BaseURL = override.LLM.BaseURL
	}
	if override.LLM.MaxTokens > 0 {
		base.LLM.MaxTokens = override.LLM.MaxTokens
	}
	if override.LLM.Timeout > 0 {
		base.LLM.Timeout = override.LLM.Timeout
	}
	if override.LLM.CacheTTL > 0 {
		base.LLM.CacheTTL = override.LLM.CacheTTL
	}

	if override.Ingest.BatchSize > 0 {
		base.Ingest.BatchSize = override.Ingest.BatchSize
	}
	if override.Ingest.MaxFiles > 0 {
		base.Ingest.MaxFiles = override.Ingest.MaxFiles
	}
	if override.Ingest.MaxUploadMB > 0 {
		base.Ingest.MaxUploadMB = override.Ingest.MaxUploadMB
	}
	if override.Ingest.ExtractWorkers > 0 {
		base.Ingest.ExtractWorkers = override.Ingest.ExtractWorkers
	}
	if override.Ingest.OnBatchError != "" {
		base.Ingest.OnBatchError = override.Ingest.OnBatchError
	}

	return base
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		log.Printf("config: ignoring invalid %s=%q: %v", key, v, err)
		return 0, false
	}
	return n, true
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		log.Printf("config: ignoring invalid %s=%q: %v", key, v, err)
		return false, false
	}
	return b, true
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		log.Printf("config: ignoring invalid %s=%q: %v", key, v, err)
		return 0, false
	}
	return d, true
}
