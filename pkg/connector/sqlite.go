// pkg/connector/sqlite.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/smart-store/analytics-pipeline/pkg/config"
)

// SQLiteConnector implements the DatabaseConnector interface for the
// file-backed SQLite warehouse, the default engine for local runs
type SQLiteConnector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.WarehouseConfig
}

// NewSQLiteConnector creates and initializes a new SQLite connector,
// creating the warehouse directory if needed
func NewSQLiteConnector(ctx context.Context, cfg *config.WarehouseConfig) (*SQLiteConnector, error) {
	logger := zap.L().Named("sqlite-connector")

	path := cfg.SQLitePath
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create warehouse directory: %w", err)
		}
	}

	logger.Info("Opening SQLite warehouse", zap.String("path", path))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite connection: %w", err)
	}

	// modernc.org/sqlite serializes access internally; a single
	// connection avoids table-lock contention during the load
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := PingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	return &SQLiteConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}, nil
}

// DB returns the underlying database connection
func (c *SQLiteConnector) DB() *sql.DB {
	return c.db
}

// DriverName returns the registered driver name
func (c *SQLiteConnector) DriverName() string {
	return "sqlite"
}

// Validate verifies the SQLite connection is writable
func (c *SQLiteConnector) Validate() error {
	var version string
	if err := c.db.QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query SQLite version: %w", err)
	}
	c.logger.Info("Connected to SQLite", zap.String("version", version))

	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS _permission_check (id INTEGER);
		DROP TABLE _permission_check;
	`)
	if err != nil {
		return fmt.Errorf("permission validation failed: %w", err)
	}

	return nil
}

// Close closes the database connection
func (c *SQLiteConnector) Close() error {
	c.logger.Info("Closing SQLite connection")
	return c.db.Close()
}
