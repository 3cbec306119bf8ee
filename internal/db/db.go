package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tgienger/organizer/internal/config"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

// ErrNotFound is returned when an update or archive matches no row
var ErrNotFound = errors.New("record not found")

// Default field values applied on insert, as the collection service always did
const (
	DefaultStatus    = "todo"
	DefaultPriority  = "medium"
	DefaultColor     = "purple"
	DefaultNotebook  = "Работа"
	DefaultEventType = "Работа"
)

// DB wraps the database connection
type DB struct {
	*sqlx.DB
}

// New opens the database described by cfg. An empty sqlite DSN means
// organizer.db in the user data directory.
func New(cfg config.DatabaseConfig) (*DB, error) {
	dsn := cfg.DSN
	if cfg.Driver == "sqlite3" && dsn == "" {
		dir, err := config.DataDir()
		if err != nil {
			return nil, err
		}
		dsn = filepath.Join(dir, "organizer.db")
	}
	return Open(cfg.Driver, dsn)
}

// Open connects with the given driver and initializes the schema
func Open(driver, dsn string) (*DB, error) {
	var schema string
	switch driver {
	case "sqlite3":
		schema = sqliteSchema
		if !strings.Contains(dsn, "?") {
			dsn += "?_foreign_keys=on"
		}
	case "postgres":
		schema = postgresSchema
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// every sqlite connection would otherwise get its own in-memory database
	if driver == "sqlite3" && strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{db}, nil
}

// HealthCheck pings the database
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// WithTransaction executes fn within a transaction
func (db *DB) WithTransaction(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rollbackErr, err)
		}
		return err
	}

	return tx.Commit()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func checkAffected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
