package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"advertisement-service/internal/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var schemas = map[string]string{
	config.DriverSQLite: `
		CREATE TABLE IF NOT EXISTS advertisement (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			title       TEXT     NOT NULL,
			description TEXT,
			price       REAL     NOT NULL,
			author      TEXT     NOT NULL,
			created_at  DATETIME NOT NULL
		)`,
	config.DriverMySQL: `
		CREATE TABLE IF NOT EXISTS advertisement (
			id          BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
			title       VARCHAR(255) NOT NULL,
			description TEXT         NULL,
			price       DOUBLE       NOT NULL,
			author      VARCHAR(255) NOT NULL,
			created_at  DATETIME(6)  NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// NewDatabase opens a pooled connection for the configured driver and makes
// sure the advertisement table exists.
func NewDatabase(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if _, ok := schemas[cfg.Driver]; !ok {
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}

	if cfg.Driver == config.DriverSQLite {
		if dir := filepath.Dir(filepath.Clean(cfg.Path)); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	configurePool(db, cfg.Driver)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := EnsureSchema(ctx, db, cfg.Driver); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func configurePool(db *sqlx.DB, driver string) {
	if driver == config.DriverSQLite {
		// sqlite serialises writers; one connection avoids SQLITE_BUSY between pool members.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
}

func EnsureSchema(ctx context.Context, db *sqlx.DB, driver string) error {
	schema, ok := schemas[driver]
	if !ok {
		return fmt.Errorf("unsupported driver %q", driver)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create advertisement table: %w", err)
	}
	return nil
}
