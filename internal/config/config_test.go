package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsPositionsBaseToAPIBase(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.local:8080")
	t.Setenv("POSITIONS_API_BASE_URL", "")
	t.Setenv("TOKEN_STORE", "")
	t.Setenv("HTTP_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://api.local:8080", cfg.PositionsAPIBaseURL)
	assert.Equal(t, TokenStoreFile, cfg.TokenStore)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "127.0.0.1:3000", cfg.ServerAddr())
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("HTTP_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			APIBaseURL:     "https://api.example.com",
			HTTPTimeout:    time.Second,
			TokenStore:     TokenStoreMemory,
			ServerPort:     "3000",
			RequestTimeout: time.Second,
		}
	}

	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing api base", mutate: func(c *Config) { c.APIBaseURL = "" }, wantErr: "API_BASE_URL is required"},
		{name: "relative api base", mutate: func(c *Config) { c.APIBaseURL = "/api" }, wantErr: "absolute URL"},
		{name: "bad scheme", mutate: func(c *Config) { c.PositionsAPIBaseURL = "ftp://files" }, wantErr: "http or https"},
		{name: "unknown store", mutate: func(c *Config) { c.TokenStore = "etcd" }, wantErr: "TOKEN_STORE"},
		{name: "file store without path", mutate: func(c *Config) { c.TokenStore = TokenStoreFile }, wantErr: "TOKEN_FILE"},
		{name: "redis store without key", mutate: func(c *Config) {
			c.TokenStore = TokenStoreRedis
			c.RedisAddr = "localhost:6379"
		}, wantErr: "REDIS_TOKEN_KEY"},
		{name: "zero timeout", mutate: func(c *Config) { c.HTTPTimeout = 0 }, wantErr: "HTTP_TIMEOUT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, cfg.APIBaseURL, cfg.PositionsAPIBaseURL)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, splitCSV("  "))
	assert.Equal(t, []string{"http://a", "http://b"}, splitCSV("http://a, ,http://b"))
}
