package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

const anchorDateLayout = "2006-01-02"

type Config struct {
	Server    ServerConfig
	Generator GeneratorConfig
	Store     StoreConfig
	Logger    LoggerConfig
	Security  SecurityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	EnableH2C       bool
}

type GeneratorConfig struct {
	CatalogFile      string
	OutputFile       string
	RulesFile        string
	RecordCount      int
	AnchorDate       time.Time
	MaxSubstitutions int
	// Seed of zero leaves generation unseeded.
	Seed     uint64
	Sampling string
}

type StoreConfig struct {
	Driver string
	DSN    string
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8084),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			EnableH2C:       getEnvBool("SERVER_H2C", false),
		},
		Generator: GeneratorConfig{
			CatalogFile:      getEnvString("CATALOG_FILE", "attached_assets/brands_500.json"),
			OutputFile:       getEnvString("OUTPUT_FILE", "dashboard_data.json"),
			RulesFile:        getEnvString("CATEGORY_RULES_FILE", ""),
			RecordCount:      getEnvInt("GENERATOR_RECORD_COUNT", 500),
			AnchorDate:       getEnvDate("GENERATOR_ANCHOR_DATE", time.Date(2025, 4, 24, 0, 0, 0, 0, time.UTC)),
			MaxSubstitutions: getEnvInt("GENERATOR_MAX_SUBSTITUTIONS", 40),
			Seed:             getEnvUint64("GENERATOR_SEED", 0),
			Sampling:         getEnvString("GENERATOR_SAMPLING", "uniform"),
		},
		Store: StoreConfig{
			Driver: getEnvString("STORE_DRIVER", "none"),
			DSN:    getEnvString("STORE_DSN", ""),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 10),
			AllowedOrigins:  getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8084"}),
			TrustedProxies:  getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings. Callers that override fields after Load
// should run it again.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Generator.RecordCount < 1 {
		return fmt.Errorf("generator record count must be positive, got %d", c.Generator.RecordCount)
	}

	if c.Generator.MaxSubstitutions < 0 {
		return fmt.Errorf("generator max substitutions cannot be negative, got %d", c.Generator.MaxSubstitutions)
	}

	validSampling := []string{"uniform", "weighted"}
	if !slices.Contains(validSampling, c.Generator.Sampling) {
		return fmt.Errorf("invalid sampling %q, must be one of: %s", c.Generator.Sampling, strings.Join(validSampling, ", "))
	}

	validDrivers := []string{"none", "sqlite", "postgres"}
	if !slices.Contains(validDrivers, c.Store.Driver) {
		return fmt.Errorf("invalid store driver %q, must be one of: %s", c.Store.Driver, strings.Join(validDrivers, ", "))
	}

	if c.Store.Driver != "none" && c.Store.DSN == "" {
		return fmt.Errorf("store DSN cannot be empty for driver %q", c.Store.Driver)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvDate(key string, defaultValue time.Time) time.Time {
	if value := os.Getenv(key); value != "" {
		if date, err := time.Parse(anchorDateLayout, value); err == nil {
			return date
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LogValue keeps the store DSN, which may carry credentials, out of logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("address", c.Address()),
		slog.Bool("h2c", c.Server.EnableH2C),
		slog.String("catalog_file", c.Generator.CatalogFile),
		slog.String("rules_file", c.Generator.RulesFile),
		slog.Int("record_count", c.Generator.RecordCount),
		slog.String("anchor_date", c.Generator.AnchorDate.Format(anchorDateLayout)),
		slog.Int("max_substitutions", c.Generator.MaxSubstitutions),
		slog.Bool("seeded", c.Generator.Seed != 0),
		slog.String("sampling", c.Generator.Sampling),
		slog.String("store_driver", c.Store.Driver),
		slog.String("log_level", c.Logger.Level),
		slog.Bool("rate_limit", c.Security.EnableRateLimit),
	)
}
