package db

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"marketplace-service/internal/config"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "db").Logger()

// retryDelay is a variable so tests can shorten it.
var retryDelay = 3 * time.Second

// DSN builds the driver specific data source name.
func DSN(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case DriverMySQL:
		if cfg.DSN != "" {
			return cfg.DSN, nil
		}
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		return mc.FormatDSN(), nil
	case DriverSQLite:
		if cfg.DSN == "" {
			return "", fmt.Errorf("database.dsn is required for the sqlite driver")
		}
		if strings.Contains(cfg.DSN, "?") {
			return cfg.DSN, nil
		}
		return cfg.DSN + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// Open connects to the configured database, retrying until it answers a ping.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	retries := cfg.ConnectRetries
	if retries <= 0 {
		retries = 1
	}

	var db *sql.DB
	for i := 0; i < retries; i++ {
		db, err = sql.Open(cfg.Driver, dsn)
		if err == nil {
			err = db.PingContext(ctx)
			if err == nil {
				configurePool(db, cfg)
				logger.Info().Str("driver", cfg.Driver).Msgf("Connected to DB %s", cfg.Name)
				return db, nil
			}
			_ = db.Close()
		}
		logger.Warn().Err(err).Msgf("Retry %d: failed to connect to %s database", i+1, cfg.Driver)
		if i < retries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to %s database after %d attempts: %w", cfg.Driver, retries, err)
}

func configurePool(db *sql.DB, cfg config.DatabaseConfig) {
	if cfg.Driver == DriverSQLite {
		// one writer at a time; every query must release its connection before the next
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		return
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = maxOpen
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = 60
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(time.Duration(lifetime) * time.Minute)

	logger.Info().
		Int("max_open_conns", maxOpen).
		Int("max_idle_conns", maxIdle).
		Int("conn_max_lifetime_min", lifetime).
		Msg("Configured connection pool")
}
