package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TokenStoreFile   = "file"
	TokenStoreSQLite = "sqlite"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

type Config struct {
	APIBaseURL          string
	PositionsAPIBaseURL string
	HTTPTimeout         time.Duration

	TokenStore         string
	TokenFile          string
	TokenEncryptionKey string
	TokenDBPath        string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisTokenKey      string

	ServerHost              string
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration
	CORSOrigins             []string
	RateLimitRPM            int
	AuthRateLimitRPM        int

	LogLevel string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:          getEnv("API_BASE_URL", ""),
		PositionsAPIBaseURL: getEnv("POSITIONS_API_BASE_URL", ""),
		HTTPTimeout:         getDuration("HTTP_TIMEOUT", 30*time.Second),

		TokenStore:         strings.ToLower(getEnv("TOKEN_STORE", TokenStoreFile)),
		TokenFile:          getEnv("TOKEN_FILE", defaultStatePath("token")),
		TokenEncryptionKey: strings.TrimSpace(os.Getenv("TOKEN_ENCRYPTION_KEY")),
		TokenDBPath:        getEnv("TOKEN_DB_PATH", defaultStatePath("session.db")),
		RedisAddr:          getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getInt("REDIS_DB", 0),
		RedisTokenKey:      getEnv("REDIS_TOKEN_KEY", "positions-console:token"),

		ServerHost:              getEnv("SERVER_HOST", "127.0.0.1"),
		ServerPort:              getEnv("SERVER_PORT", "3000"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 45*time.Second),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "")),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 300),
		AuthRateLimitRPM:        getInt("AUTH_RATE_LIMIT_RPM", 20),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// Validate is called after command-line overrides have been applied.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}

	if err := validateBaseURL("API_BASE_URL", c.APIBaseURL); err != nil {
		return err
	}

	if strings.TrimSpace(c.PositionsAPIBaseURL) == "" {
		c.PositionsAPIBaseURL = c.APIBaseURL
	}

	if err := validateBaseURL("POSITIONS_API_BASE_URL", c.PositionsAPIBaseURL); err != nil {
		return err
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	switch c.TokenStore {
	case TokenStoreFile:
		if strings.TrimSpace(c.TokenFile) == "" {
			return fmt.Errorf("TOKEN_FILE cannot be empty")
		}
	case TokenStoreSQLite:
		if strings.TrimSpace(c.TokenDBPath) == "" {
			return fmt.Errorf("TOKEN_DB_PATH cannot be empty")
		}
	case TokenStoreRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("REDIS_ADDR cannot be empty")
		}
		if strings.TrimSpace(c.RedisTokenKey) == "" {
			return fmt.Errorf("REDIS_TOKEN_KEY cannot be empty")
		}
	case TokenStoreMemory:
	default:
		return fmt.Errorf("TOKEN_STORE must be one of file, sqlite, redis, memory, got %q", c.TokenStore)
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}

func (c *Config) ServerAddr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func validateBaseURL(key string, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", key, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", key, u.Scheme)
	}
	return nil
}

func defaultStatePath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".", ".positions-console", name)
	}
	return filepath.Join(dir, "positions-console", name)
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
