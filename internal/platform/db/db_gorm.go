// Package db opens the relational store behind the GORM adapters.
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	authadapters "shop_backend/internal/feature/auth/adapters"
	productadapters "shop_backend/internal/feature/product/adapters"
)

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// ErrUnsupportedURL is returned for a DATABASE_URL whose scheme has no GORM driver.
var ErrUnsupportedURL = errors.New("unsupported database url")

// Opener opens a GORM connection for dsn.
type Opener func(dsn string) (*gorm.DB, error)

// Dialector returns the GORM dialector for a postgres:// or sqlite:// URL.
// "sqlite://:memory:" and "sqlite://file.db" are accepted.
func Dialector(url string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			return nil, fmt.Errorf("%w: sqlite url has no path", ErrUnsupportedURL)
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, redact(url))
	}
}

// GormOpener opens url with the dialector matching its scheme.
// TranslateError makes unique violations surface as gorm.ErrDuplicatedKey.
func GormOpener(url string) (*gorm.DB, error) {
	d, err := Dialector(url)
	if err != nil {
		return nil, err
	}
	return gorm.Open(d, &gorm.Config{TranslateError: true, Logger: newLogger()})
}

// slowQueryThreshold is the duration above which GORM reports a query as slow.
const slowQueryThreshold = 200 * time.Millisecond

// newLogger routes GORM's warnings and errors through the default slog handler.
// Misses that surface as gorm.ErrRecordNotFound are expected lookups and are not logged.
func newLogger() logger.Interface {
	return logger.New(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn), logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
	})
}

// ConnectWithRetry calls opener until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if errors.Is(err, ErrUnsupportedURL) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %v: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open connects to url with retry.
func Open(url string, timeout time.Duration) (*gorm.DB, error) {
	db, err := ConnectWithRetry(url, timeout, GormOpener)
	if err != nil {
		return nil, err
	}
	// every connection to :memory: is a separate empty database
	if strings.HasPrefix(url, "sqlite://") && strings.Contains(url, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	slog.Info("DB connection successful", "url", redact(url))
	return db, nil
}

// Migrate creates or updates the users and products tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&authadapters.UserModel{},
		&productadapters.ProductModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// redact hides the userinfo part of a connection URL for logging.
func redact(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return "***"
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}
