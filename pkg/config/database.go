// pkg/config/database.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Warehouse driver names
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// WarehouseConfig holds the relational warehouse connection parameters.
// SQLite is the default engine; PostgreSQL is available for shared
// deployments.
type WarehouseConfig struct {
	Driver string

	// SQLite settings
	SQLitePath string

	// PostgreSQL settings
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Statement timeout for load and cube queries
	StatementTimeout time.Duration
}

// LoadWarehouseConfig loads warehouse configuration from environment
// variables, defaulting to a SQLite file under the data directory
func LoadWarehouseConfig(dataDir string) (*WarehouseConfig, error) {
	cfg := &WarehouseConfig{
		Driver:     getEnv("WAREHOUSE_DRIVER", DriverSQLite),
		SQLitePath: getEnv("WAREHOUSE_SQLITE_PATH", filepath.Join(dataDir, "dw", "smart_store_dw.db")),

		Host:     getEnv("WAREHOUSE_HOST", "localhost"),
		Port:     getEnvAsInt("WAREHOUSE_PORT", 5432),
		User:     os.Getenv("WAREHOUSE_USER"),
		Password: os.Getenv("WAREHOUSE_PASSWORD"),
		Database: os.Getenv("WAREHOUSE_DB"),
		SSLMode:  getEnv("WAREHOUSE_SSLMODE", "disable"),

		MaxOpenConns:     getEnvAsInt("WAREHOUSE_MAX_OPEN_CONNS", 5),
		MaxIdleConns:     getEnvAsInt("WAREHOUSE_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime:  time.Duration(getEnvAsInt("WAREHOUSE_CONN_MAX_LIFETIME_SECONDS", 1800)) * time.Second,
		ConnMaxIdleTime:  time.Duration(getEnvAsInt("WAREHOUSE_CONN_MAX_IDLE_TIME_SECONDS", 600)) * time.Second,
		StatementTimeout: time.Duration(getEnvAsInt("WAREHOUSE_STATEMENT_TIMEOUT_SECONDS", 300)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures the warehouse configuration is usable
func (c *WarehouseConfig) Validate() error {
	switch c.Driver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("WAREHOUSE_SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.User == "" {
			return errors.New("WAREHOUSE_USER environment variable is required for the postgres driver")
		}
		if c.Password == "" {
			return errors.New("WAREHOUSE_PASSWORD environment variable is required for the postgres driver")
		}
		if c.Database == "" {
			return errors.New("WAREHOUSE_DB environment variable is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported warehouse driver: %s", c.Driver)
	}

	return nil
}

// ConnectionString returns a formatted PostgreSQL connection string
func (c *WarehouseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}
