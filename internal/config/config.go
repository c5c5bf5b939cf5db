package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL      string        `yaml:"database_url"`
	Port             string        `yaml:"port"`
	JWTSecret        string        `yaml:"jwt_secret"`
	RedisURL         string        `yaml:"redis_url"`
	LogLevel         string        `yaml:"log_level"`
	CurrencyExponent int32         `yaml:"currency_exponent"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		DatabaseURL:      "sqlite://data/splitsettle.db",
		Port:             "8080",
		LogLevel:         "info",
		CurrencyExponent: 2,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE, then environment variables. A .env file in the working
// directory is loaded into the environment first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.Port = getEnv("PORT", c.Port)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	if v, ok := os.LookupEnv("CURRENCY_EXPONENT"); ok {
		exp, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid CURRENCY_EXPONENT %q: %w", v, err)
		}
		c.CurrencyExponent = int32(exp)
	}
	if v, ok := os.LookupEnv("SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		c.ShutdownTimeout = d
	}
	return nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.CurrencyExponent < 0 || c.CurrencyExponent > 8 {
		return fmt.Errorf("currency exponent must be between 0 and 8, got %d", c.CurrencyExponent)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
