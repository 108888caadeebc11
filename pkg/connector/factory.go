// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/smart-store/analytics-pipeline/pkg/config"
)

// NewWarehouseConnector creates the connector matching the configured
// warehouse driver
func NewWarehouseConnector(ctx context.Context, cfg *config.WarehouseConfig, logger *zap.Logger) (DatabaseConnector, error) {
	logger.Info("Creating warehouse connector", zap.String("driver", cfg.Driver))

	var conn DatabaseConnector
	var err error
	switch cfg.Driver {
	case config.DriverSQLite:
		conn, err = NewSQLiteConnector(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite connector: %w", err)
		}
	case config.DriverPostgres:
		conn, err = NewPostgresConnector(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported warehouse driver: %s", cfg.Driver)
	}

	if err := conn.Validate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("warehouse connection validation failed: %w", err)
	}
	return conn, nil
}
