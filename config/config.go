// Package config loads the Argus service configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the Argus service.
type Config struct {
	API struct {
		Port      int `mapstructure:"port"`
		RateLimit struct {
			RequestsPerSecond int `mapstructure:"requests_per_second"`
			Burst             int `mapstructure:"burst"`
		} `mapstructure:"rate_limit"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
		AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	} `mapstructure:"api"`

	Redis struct {
		Enabled  bool   `mapstructure:"enabled"`
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
		PoolSize int    `mapstructure:"pool_size"`
	} `mapstructure:"redis"`

	LLM struct {
		// Provider selects the backend: "openai" or "mock". An empty API
		// key forces "mock" regardless of this setting.
		Provider string        `mapstructure:"provider"`
		APIKey   string        `mapstructure:"api_key"`
		Model    string        `mapstructure:"model"`
		Timeout  time.Duration `mapstructure:"timeout"`
	} `mapstructure:"llm"`

	Analysis struct {
		CacheTTL         time.Duration `mapstructure:"cache_ttl"`
		MaxRelated       int           `mapstructure:"max_related"`
		BatchWorkers     int           `mapstructure:"batch_workers"`
		FallbackLRUSize  int           `mapstructure:"fallback_lru_size"`
		ClusterWindow    time.Duration `mapstructure:"cluster_window"`
		TechniqueCatalog string        `mapstructure:"technique_catalog"` // optional path overriding the builtin table
	} `mapstructure:"analysis"`
}

// setDefaults registers the default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.rate_limit.requests_per_second", 50)
	v.SetDefault("api.rate_limit.burst", 100)
	v.SetDefault("api.read_timeout", 15*time.Second)
	v.SetDefault("api.write_timeout", 30*time.Second)
	v.SetDefault("api.shutdown_timeout", 10*time.Second)
	v.SetDefault("api.allowed_origins", []string{"*"})

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("llm.provider", "mock")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout", 30*time.Second)

	v.SetDefault("analysis.cache_ttl", time.Hour)
	v.SetDefault("analysis.max_related", 10)
	v.SetDefault("analysis.batch_workers", 4)
	v.SetDefault("analysis.fallback_lru_size", 1024)
	v.SetDefault("analysis.cluster_window", 24*time.Hour)
	v.SetDefault("analysis.technique_catalog", "")
}

// LoadConfig reads config.yaml from the working directory (or /etc/argus)
// and applies ARGUS_* environment overrides.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/argus")

	v.SetEnvPrefix("ARGUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus env cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api.port: %d", c.API.Port)
	}
	if c.API.RateLimit.RequestsPerSecond < 1 {
		return fmt.Errorf("invalid api.rate_limit.requests_per_second: %d", c.API.RateLimit.RequestsPerSecond)
	}
	if c.Analysis.MaxRelated < 0 {
		return fmt.Errorf("invalid analysis.max_related: %d", c.Analysis.MaxRelated)
	}
	if c.Analysis.BatchWorkers < 1 {
		return fmt.Errorf("invalid analysis.batch_workers: %d", c.Analysis.BatchWorkers)
	}
	switch c.LLM.Provider {
	case "openai", "mock":
	default:
		return fmt.Errorf("unknown llm.provider: %q", c.LLM.Provider)
	}
	return nil
}
