// Package config loads process-wide settings from the environment once at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shop_backend/internal/feature/auth/usecase"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	AppEnv  string
	Port    string
	GinMode string

	DatabaseURL      string
	MongoDatabase    string
	RunMigrations    bool
	DBConnectTimeout time.Duration

	JWTSecret    string
	IdentityMode usecase.IdentityMode
	BcryptCost   int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RateLimitAuthMax int
	RateLimitWindow  time.Duration

	CORSAllowedOrigins []string
	MetricsEnabled     bool
}

// IsProduction reports whether APP_ENV selects production behaviour.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var errs []error

	mode, err := usecase.ParseIdentityMode(getEnv("AUTH_IDENTITY_MODE", ""))
	if err != nil {
		errs = append(errs, err)
	}

	cfg := Config{
		AppEnv:  getEnv("APP_ENV", "development"),
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", ""),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		MongoDatabase:    getEnv("MONGO_DATABASE", ""),
		RunMigrations:    getBool("RUN_MIGRATIONS", false, &errs),
		DBConnectTimeout: getDuration("DB_CONNECT_TIMEOUT", 60*time.Second, &errs),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		IdentityMode: mode,
		BcryptCost:   getInt("BCRYPT_COST", bcrypt.DefaultCost, &errs),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0, &errs),
		CacheTTL:      getDuration("CACHE_TTL", 5*time.Minute, &errs),

		RateLimitAuthMax: getInt("RATE_LIMIT_AUTH_MAX", 10, &errs),
		RateLimitWindow:  getDuration("RATE_LIMIT_WINDOW", time.Minute, &errs),

		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS"),
		MetricsEnabled:     getBool("METRICS_ENABLED", true, &errs),
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.BcryptCost < bcrypt.DefaultCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.DefaultCost, bcrypt.MaxCost))
	}
	if c.RateLimitAuthMax < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_AUTH_MAX must not be negative"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	s := getEnv(key, "")
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, s))
		return fallback
	}
	return v
}

func getBool(key string, fallback bool, errs *[]error) bool {
	s := getEnv(key, "")
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid boolean %q", key, s))
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	s := getEnv(key, "")
	if s == "" {
		return fallback
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, s))
		return fallback
	}
	return v
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
