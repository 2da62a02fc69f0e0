package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/lease-extractor/constants"
)

type Config struct {
	Driver           constants.HistoryDriver
	DSN              string
	AppName          string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// DB is an open history database. Postgres goes through a pgx pool wrapped as *sql.DB;
// SQLite uses the pure-Go modernc driver. Both are wrapped for Ent's SQL builder.
type DB struct {
	SQL     *sql.DB
	Driver  *entsql.Driver
	Dialect constants.HistoryDriver
	pool    *pgxpool.Pool
}

// entDialect maps the configured driver onto Ent's dialect name.
func entDialect(d constants.HistoryDriver) string {
	if d == constants.HistoryPostgres {
		return dialect.Postgres
	}
	return dialect.SQLite
}

func newDB(sqldb *sql.DB, d constants.HistoryDriver, pool *pgxpool.Pool) *DB {
	return &DB{SQL: sqldb, Driver: entsql.OpenDB(entDialect(d), sqldb), Dialect: d, pool: pool}
}

// Open connects to the configured backend and makes sure the schema exists.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	logger.Info("connecting to history database", "driver", cfg.Driver)

	var db *DB
	var err error
	switch cfg.Driver {
	case constants.HistoryPostgres:
		db, err = openPostgres(ctx, cfg)
	case constants.HistorySQLite:
		db, err = openSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported history driver %q", cfg.Driver)
	}
	if err != nil {
		logger.Error("failed to connect to history database", "driver", cfg.Driver, "error", err)
		return nil, err
	}

	if err := HealthCheck(ctx, db, cfg.DialTimeout, logger); err != nil {
		db.Close(logger)
		return nil, fmt.Errorf("ping history database: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close(logger)
		return nil, fmt.Errorf("migrate history database: %w", err)
	}

	logger.Info("successfully connected to history database", "driver", cfg.Driver)
	return db, nil
}

func openPostgres(ctx context.Context, cfg Config) (*DB, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	appName := cfg.AppName
	if appName == "" {
		appName = "lease-extractor"
	}
	pc.ConnConfig.RuntimeParams["application_name"] = appName
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds())
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}
	// Wrap pool as *sql.DB for Ent
	return newDB(stdlib.OpenDBFromPool(pool), constants.HistoryPostgres, pool), nil
}

func openSQLite(cfg Config) (*DB, error) {
	sqldb, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	// One writer; also keeps ":memory:" databases on a single connection.
	sqldb.SetMaxOpenConns(1)
	return newDB(sqldb, constants.HistorySQLite, nil), nil
}

// Close closes the database connections gracefully
func (db *DB) Close(logger *slog.Logger) {
	if db == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("closing history database")
	if err := db.Driver.Close(); err != nil {
		logger.Error("failed to close history database", "error", err)
	}
	if db.pool != nil {
		db.pool.Close()
	}
}

// HealthCheck pings the database to catch DSN issues early.
func HealthCheck(ctx context.Context, db *DB, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	logger.Debug("pinging history database")
	if db.pool != nil {
		return db.pool.Ping(ctx)
	}
	return db.SQL.PingContext(ctx)
}
