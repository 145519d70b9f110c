package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Run from an empty directory so no config.yaml is picked up.
	chdirTemp(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 50, cfg.API.RateLimit.RequestsPerSecond)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 10, cfg.Analysis.MaxRelated)
	assert.Equal(t, 4, cfg.Analysis.BatchWorkers)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := chdirTemp(t)

	data := []byte(`
api:
  port: 9090
llm:
  provider: openai
  api_key: sk-test
analysis:
  max_related: 25
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 25, cfg.Analysis.MaxRelated)
	// Untouched settings keep their defaults.
	assert.Equal(t, 100, cfg.API.RateLimit.Burst)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ARGUS_API_PORT", "7070")
	t.Setenv("ARGUS_REDIS_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.API.Port)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(":\n - ["), 0o644))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.API.Port = 8080
		cfg.API.RateLimit.RequestsPerSecond = 50
		cfg.Analysis.BatchWorkers = 4
		cfg.LLM.Provider = "mock"
		return cfg
	}

	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too low", func(c *Config) { c.API.Port = 0 }},
		{"port too high", func(c *Config) { c.API.Port = 70000 }},
		{"zero rate limit", func(c *Config) { c.API.RateLimit.RequestsPerSecond = 0 }},
		{"negative max related", func(c *Config) { c.Analysis.MaxRelated = -1 }},
		{"zero batch workers", func(c *Config) { c.Analysis.BatchWorkers = 0 }},
		{"unknown llm provider", func(c *Config) { c.LLM.Provider = "other" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// chdirTemp switches the working directory to a fresh temp dir for the test.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
	return dir
}
