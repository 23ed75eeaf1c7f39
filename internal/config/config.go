// Package config loads service settings from the environment.
//
// An optional .env file is read first (see LoadEnvFile); real environment
// variables always take precedence over it.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	HTTPAddr        string
	Env             string // development, production
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// Peers allowed to set X-Forwarded-For / X-Real-IP; empty trusts none
	TrustedProxies []netip.Prefix

	// Logging
	LogLevel  string
	LogFormat string // json, console

	// Single-tenant account all logins are resolved against
	AccountID int64

	// Session tokens
	JWTSecret              string
	JWTAlgorithm           string
	JWTExpiresIn           time.Duration
	JWTRememberMeExpiresIn time.Duration

	// Database
	DatabaseURL       string
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	DBMaxConnLifetime time.Duration
	DBConnectTimeout  time.Duration
}

// IsProduction reports whether internal error detail must be hidden.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadEnvFile loads key=value pairs from path without overriding variables
// that are already set. A missing file is an error only when required.
func LoadEnvFile(path string, required bool) error {
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load reads and validates the configuration.
func Load() (*Config, error) {
	var errs []error
	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8081"),
		Env:             strings.ToLower(getEnv("APP_ENV", "development")),
		ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 5*time.Second, &errs),
		WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second, &errs),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second, &errs),
		TrustedProxies:  getEnvPrefixes("TRUSTED_PROXIES", &errs),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),

		AccountID: getEnvInt64("ACCOUNT_ID", 1, &errs),

		JWTSecret:              os.Getenv("JWT_SECRET"),
		JWTAlgorithm:           strings.ToUpper(getEnv("JWT_ALGORITHM", "HS256")),
		JWTExpiresIn:           getEnvDuration("JWT_EXPIRES_IN", 8*time.Hour, &errs),
		JWTRememberMeExpiresIn: getEnvDuration("JWT_REMEMBER_ME_EXPIRES_IN", 30*24*time.Hour, &errs),

		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBMaxConns:        getEnvInt32("DB_MAX_CONNS", 10, &errs),
		DBMinConns:        getEnvInt32("DB_MIN_CONNS", 0, &errs),
		DBMaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Second, &errs),
		DBMaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute, &errs),
		DBConnectTimeout:  getEnvDuration("DB_CONNECT_TIMEOUT", 5*time.Second, &errs),
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes, got %d", len(c.JWTSecret))
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("JWT_ALGORITHM must be HS256, HS384 or HS512, got %q", c.JWTAlgorithm)
	}
	if c.JWTExpiresIn < time.Second {
		return fmt.Errorf("JWT_EXPIRES_IN must be at least 1s, got %s", c.JWTExpiresIn)
	}
	if c.JWTRememberMeExpiresIn <= c.JWTExpiresIn {
		return fmt.Errorf("JWT_REMEMBER_ME_EXPIRES_IN (%s) must be longer than JWT_EXPIRES_IN (%s)",
			c.JWTRememberMeExpiresIn, c.JWTExpiresIn)
	}
	if c.AccountID < 1 {
		return fmt.Errorf("ACCOUNT_ID must be positive, got %d", c.AccountID)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be at least 1, got %d", c.DBMaxConns)
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS (%d), got %d", c.DBMaxConns, c.DBMinConns)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64, errs *[]error) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, value))
		return defaultValue
	}
	return n
}

func getEnvInt32(key string, defaultValue int32, errs *[]error) int32 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, value))
		return defaultValue
	}
	return int32(n)
}

func getEnvDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, value))
		return defaultValue
	}
	return d
}

// getEnvPrefixes parses a comma-separated list of CIDRs or bare addresses.
func getEnvPrefixes(key string, errs *[]error) []netip.Prefix {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var prefixes []netip.Prefix
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if addr, err := netip.ParseAddr(item); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(item)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("%s: invalid CIDR or address %q", key, item))
			continue
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return prefixes
}
