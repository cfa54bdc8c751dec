package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the qou service configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Database      DatabaseConfig      `yaml:"database"`
	Search        SearchConfig        `yaml:"search"`
	NER           NERConfig           `yaml:"ner"`
	Understanding UnderstandingConfig `yaml:"understanding"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	Auth          AuthConfig          `yaml:"auth"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds product index and engine settings.
type SearchConfig struct {
	IndexName       string `yaml:"index_name"`
	KeyPrefix       string `yaml:"key_prefix"`
	DefaultLimit    int    `yaml:"default_limit"`
	MaxLimit        int    `yaml:"max_limit"`
	AggregationSize int    `yaml:"aggregation_size"`
	SuggestKey      string `yaml:"suggest_key"`
	SpellDict       string `yaml:"spellcheck_dictionary"`
	SpellDistance   int    `yaml:"spellcheck_distance"`
	TimeoutMs       int    `yaml:"timeout_ms"`
}

// NER provider names.
const (
	NERProviderHTTP   = "http"
	NERProviderOpenAI = "openai"
	NERProviderNone   = "none"
)

// NERConfig holds entity recognizer settings.
type NERConfig struct {
	Provider    string       `yaml:"provider"` // http, openai, none (default: none)
	URL         string       `yaml:"url"`
	TimeoutMs   int          `yaml:"timeout_ms"`
	RateLimit   float64      `yaml:"rate_limit_rps"` // 0 = unlimited
	RateBurst   int          `yaml:"rate_burst"`
	CacheTTLSec int          `yaml:"cache_ttl_sec"` // 0 = cache disabled
	OpenAI      OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig holds settings of the chat-completion recognizer.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// UnderstandingConfig overrides the built-in understanding vocabularies.
// Empty lists keep the defaults.
type UnderstandingConfig struct {
	Stopwords             []string            `yaml:"stopwords"`
	Lexicon               map[string][]string `yaml:"lexicon"` // entity type -> fallback terms
	InformationalPrefixes []string            `yaml:"informational_prefixes"`
}

// CatalogConfig holds catalog seeding settings.
type CatalogConfig struct {
	BatchSize int `yaml:"batch_size"`
	Workers   int `yaml:"workers"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Search.KeyPrefix == "" {
		c.Search.KeyPrefix = "qou:"
	}
	if c.Search.IndexName == "" {
		c.Search.IndexName = c.Search.KeyPrefix + "products:idx"
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 20
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 100
	}
	if c.Search.AggregationSize <= 0 {
		c.Search.AggregationSize = 10
	}
	if c.Search.SuggestKey == "" {
		c.Search.SuggestKey = c.Search.KeyPrefix + "suggest:names"
	}
	if c.Search.SpellDict == "" {
		c.Search.SpellDict = c.Search.KeyPrefix + "dict:names"
	}
	if c.Search.SpellDistance <= 0 {
		c.Search.SpellDistance = 2
	}
	if c.Search.TimeoutMs <= 0 {
		c.Search.TimeoutMs = 3000
	}
	if c.NER.Provider == "" {
		c.NER.Provider = NERProviderNone
	}
	if c.NER.TimeoutMs <= 0 {
		c.NER.TimeoutMs = 2000
	}
	if c.NER.RateBurst <= 0 {
		c.NER.RateBurst = 1
	}
	if c.NER.OpenAI.Model == "" {
		c.NER.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Catalog.BatchSize <= 0 {
		c.Catalog.BatchSize = 500
	}
	if c.Catalog.Workers <= 0 {
		c.Catalog.Workers = 4
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf(
			"search.default_limit (%d) must not exceed search.max_limit (%d)",
			c.Search.DefaultLimit, c.Search.MaxLimit,
		)
	}
	if c.Search.SpellDistance > 4 {
		return fmt.Errorf("search.spellcheck_distance must be between 1 and 4, got %d", c.Search.SpellDistance)
	}
	switch c.NER.Provider {
	case NERProviderNone:
	case NERProviderHTTP:
		if c.NER.URL == "" {
			return fmt.Errorf("ner.url is required for provider %q", NERProviderHTTP)
		}
	case NERProviderOpenAI:
		if c.NER.OpenAI.APIKey == "" {
			return fmt.Errorf("ner.openai.api_key is required for provider %q", NERProviderOpenAI)
		}
	default:
		return fmt.Errorf("ner.provider must be \"http\", \"openai\" or \"none\", got %q", c.NER.Provider)
	}
	if c.NER.RateLimit < 0 {
		return fmt.Errorf("ner.rate_limit_rps must not be negative, got %v", c.NER.RateLimit)
	}
	for typ, terms := range c.Understanding.Lexicon {
		if strings.TrimSpace(typ) == "" {
			return fmt.Errorf("understanding.lexicon has an empty entity type")
		}
		if len(terms) == 0 {
			return fmt.Errorf("understanding.lexicon.%s must list at least one term", typ)
		}
	}
	return nil
}

// SearchTimeout returns the engine call timeout.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.TimeoutMs) * time.Millisecond
}

// NERTimeout returns the recognizer call timeout.
func (c *Config) NERTimeout() time.Duration {
	return time.Duration(c.NER.TimeoutMs) * time.Millisecond
}

// NERCacheTTL returns the extraction cache TTL; zero disables the cache.
func (c *Config) NERCacheTTL() time.Duration {
	return time.Duration(c.NER.CacheTTLSec) * time.Second
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
