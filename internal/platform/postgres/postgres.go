package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Driver selects the database/sql driver GORM runs on.
type Driver string

const (
	// DriverPgx is the pgx stdlib driver bundled with gorm.io/driver/postgres.
	DriverPgx Driver = "pgx"
	// DriverPQ is github.com/lib/pq, registered under the "postgres" name.
	DriverPQ Driver = "postgres"
)

// ParseDriver accepts the POSTGRES_DRIVER values; empty means pgx.
func ParseDriver(raw string) (Driver, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DriverPgx:
		return DriverPgx, nil
	case DriverPQ, "pq", "lib/pq":
		return DriverPQ, nil
	default:
		return "", fmt.Errorf("unsupported postgres driver %q", raw)
	}
}

// Connect opens a PostgreSQL connection via GORM and verifies connectivity.
// Driver errors are translated into GORM sentinels such as gorm.ErrDuplicatedKey.
func Connect(ctx context.Context, dsn string, driver Driver) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	cfg := postgres.Config{DSN: dsn}
	if driver == DriverPQ {
		cfg.DriverName = string(DriverPQ)
	}
	db, err := gorm.Open(postgres.New(cfg), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// ConnectWithFallback dials PostgreSQL and returns the DB plus a cleanup function.
// When the DSN is empty or the connection fails, it logs and returns nil with a
// no-op cleanup so callers can fall back to in-memory repositories.
func ConnectWithFallback(ctx context.Context, dsn string, driver Driver, logger *slog.Logger) (*gorm.DB, func()) {
	if strings.TrimSpace(dsn) == "" {
		if logger != nil {
			logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		}
		return nil, func() {}
	}
	db, err := Connect(ctx, dsn, driver)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		if logger != nil {
			logger.Warn("failed to unwrap postgres connection, falling back to in-memory repositories", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	if logger != nil {
		logger.Info("postgres connection established", slog.String("driver", string(driver)))
	}
	return db, func() { _ = sqlDB.Close() }
}

// Ping reports whether the database answers within the context deadline.
func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("postgres not configured")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
