// pkg/warehouse/store.go
package warehouse

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/smart-store/analytics-pipeline/pkg/connector"
)

// modernc.org/sqlite registers as "sqlite", which sqlx does not know;
// it takes question-mark placeholders like sqlite3
func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store provides star-schema access to the relational warehouse. It wraps
// the configured connector with sqlx so the same statements run against
// both SQLite and PostgreSQL.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStore creates a warehouse store on top of an open connector
func NewStore(conn connector.DatabaseConnector, logger *zap.Logger) (*Store, error) {
	if conn == nil {
		return nil, fmt.Errorf("connector cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:     sqlx.NewDb(conn.DB(), conn.DriverName()),
		logger: logger,
	}, nil
}

// CreateSchema creates the dimension and fact tables if they do not exist
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, ddl := range schemaDDL {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create warehouse schema: %w", err)
		}
	}
	s.logger.Info("Warehouse schema ensured",
		zap.Strings("tables", []string{"customer", "product", "sale"}))
	return nil
}
