package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"cityMover/internal/db"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Auth     AuthConfig     `yaml:"auth"`
	Session  SessionConfig  `yaml:"session"`
	Logger   LoggerConfig   `yaml:"logger"`
	I18n     I18nConfig     `yaml:"i18n"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite database file path
}

// HTTPConfig contains the JSON API listener settings.
type HTTPConfig struct {
	Address string `yaml:"address"` // e.g. ":8080"
}

// GRPCConfig contains gRPC server settings.
type GRPCConfig struct {
	Address string `yaml:"address"` // gRPC health listener (e.g., ":50051")
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// SessionConfig selects where revoked sessions are tracked.
type SessionConfig struct {
	Type  string      `yaml:"type"` // "memory" or "redis"
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig contains the redis connection for the session store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// LoggerConfig represents the logger configuration.
type LoggerConfig struct {
	Level      string `yaml:"level"`     // debug, info, warn, error
	Format     string `yaml:"format"`    // json, console
	Output     string `yaml:"output"`    // stdout, file
	FilePath   string `yaml:"file_path"` // path to log file when output is file
	MaxSize    int    `yaml:"max_size"`  // MB
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // days
	Compress   bool   `yaml:"compress"`
	Color      bool   `yaml:"color"`      // colored levels for console format
	Stacktrace bool   `yaml:"stacktrace"` // attach stacktraces to error logs
}

// I18nConfig sets the fallback language for user-facing messages.
type I18nConfig struct {
	DefaultLang string `yaml:"default_lang"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Namespace string    `yaml:"namespace"`
	Buckets   []float64 `yaml:"buckets"`
}

// Load loads configuration from environment variables (and a .env file, if present)
// with sensible defaults. JWT_SECRET is required.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg, err := fromEnv("")
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a safe default for JWT_SECRET in development.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv("dev-secret-change-me")
}

// LoadFile reads a YAML configuration file. ${VAR} and ${VAR:default}
// placeholders are resolved from the environment before parsing, and unset
// values fall back to the same defaults as Load.
func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := fromEnv("")
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(resolveEnv(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	// The environment overrides the file for the signing secret.
	if v, ok := os.LookupEnv("JWT_SECRET"); ok && v != "" {
		cfg.Auth.JWTSecret = v
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is not set in %s", path)
	}
	return cfg, nil
}

func fromEnv(defaultSecret string) (*Config, error) {
	ttl, err := getEnvDuration("TOKEN_TTL", 72*time.Hour)
	if err != nil {
		return nil, err
	}
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	maxSize, err := getEnvInt("LOG_MAX_SIZE", 100)
	if err != nil {
		return nil, err
	}
	return &Config{
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", db.DefaultPath()),
		},
		HTTP: HTTPConfig{
			Address: getEnv("HTTP_ADDRESS", ":8080"),
		},
		GRPC: GRPCConfig{
			Address: getEnv("GRPC_ADDRESS", ":50051"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", defaultSecret),
			TokenTTL:  ttl,
		},
		Session: SessionConfig{
			Type: getEnv("SESSION_STORE", "memory"),
			Redis: RedisConfig{
				Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       redisDB,
				Prefix:   getEnv("REDIS_PREFIX", "citymover:session"),
			},
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Format:   getEnv("LOG_FORMAT", "json"),
			Output:   getEnv("LOG_OUTPUT", "stdout"),
			FilePath: getEnv("LOG_FILE", "logs/citymover.log"),
			MaxSize:  maxSize,
		},
		I18n: I18nConfig{
			DefaultLang: getEnv("DEFAULT_LANG", "ar"),
		},
		Metrics: MetricsConfig{
			Namespace: getEnv("METRICS_NAMESPACE", "citymover"),
		},
	}, nil
}

var envPlaceholder = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// resolveEnv replaces ${VAR} / ${VAR:default} placeholders in YAML content.
func resolveEnv(content []byte) []byte {
	return envPlaceholder.ReplaceAllFunc(content, func(match []byte) []byte {
		m := envPlaceholder.FindSubmatch(match)
		if value, ok := os.LookupEnv(string(m[1])); ok {
			return []byte(value)
		}
		return m[2]
	})
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvInt retrieves an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

// getEnvDuration retrieves an environment variable as a time.Duration.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d, nil
	}
	return defaultVal, nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, HTTP: %s, gRPC: %s, Session: %s, Auth: *** (masked) ***}",
		c.Database.Path, c.HTTP.Address, c.GRPC.Address, c.Session.Type)
}
