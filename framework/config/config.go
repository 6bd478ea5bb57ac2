package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App     AppConfig
	Log     LogConfig
	Cache   CacheConfig
	Redis   RedisConfig
	Metrics MetricsConfig
}

type AppConfig struct {
	Name    string
	Env     string // local | production | testing
	Debug   bool
	Port    string
	Version string
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // console | json
}

// CacheConfig controls the bootstrap snapshot.
type CacheConfig struct {
	Path    string // directory holding app.<format>
	Format  string // json | yaml | toml
	Driver  string // file | redis
	Refresh bool   // rebuild the snapshot on every Fire
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

type MetricsConfig struct {
	Namespace string
}

// Load reads .env (if present) and populates a Config from environment
// variables. basePath anchors the default cache directory
// (<basePath>/cache).
func Load(basePath string, envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{filepath.Join(basePath, ".env")}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:    env("APP_NAME", "Foundation"),
			Env:     env("APP_ENV", "local"),
			Debug:   envBool("APP_DEBUG", true),
			Port:    env("APP_PORT", "8000"),
			Version: env("APP_VERSION", "0.1.0"),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", "console"),
		},
		Cache: CacheConfig{
			Path:    env("CACHE_PATH", filepath.Join(basePath, "cache")),
			Format:  env("CACHE_FORMAT", "json"),
			Driver:  env("CACHE_DRIVER", "file"),
			Refresh: envBool("CACHE_REFRESH", false),
		},
		Redis: RedisConfig{
			Addr:     env("REDIS_ADDR", "127.0.0.1:6379"),
			Password: env("REDIS_PASSWORD", ""),
			DB:       GetInt("REDIS_DB", 0),
			Key:      env("REDIS_KEY", ""),
		},
		Metrics: MetricsConfig{
			Namespace: env("METRICS_NAMESPACE", "foundation"),
		},
	}
}

// IsProduction reports APP_ENV == production.
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
