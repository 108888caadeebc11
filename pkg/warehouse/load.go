// pkg/warehouse/load.go
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smart-store/analytics-pipeline/pkg/table"
)

// MissingRequiredColumnsError reports prepared data whose shape does not
// match the warehouse column mapping. This is a configuration mistake and
// aborts the load; it is never raised for bad cell values.
type MissingRequiredColumnsError struct {
	Entity  string
	Columns []string
}

func (e *MissingRequiredColumnsError) Error() string {
	return fmt.Sprintf("missing required columns in %s data: %s",
		e.Entity, strings.Join(e.Columns, ", "))
}

// execer is the slice of sqlx.Tx the insert path needs
type execer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// columnMap pairs a warehouse column with its prepared-file header
type columnMap struct {
	Dest string
	Src  string
}

// loadSpec describes how one prepared entity maps onto a warehouse table
type loadSpec struct {
	Entity  string
	Table   string
	Key     string // prepared-file primary key header, deduplicated before insert
	Columns []columnMap
}

var (
	customerSpec = loadSpec{
		Entity: "customers",
		Table:  "customer",
		Key:    "CustomerID",
		Columns: []columnMap{
			{Dest: "customer_id", Src: "CustomerID"},
			{Dest: "name", Src: "Name"},
			{Dest: "region", Src: "Region"},
			{Dest: "join_date", Src: "JoinDate"},
			{Dest: "loyalty_points", Src: "LoyaltyPoints"},
			{Dest: "preferred_contact_method", Src: "PreferredContactMethod"},
		},
	}

	productSpec = loadSpec{
		Entity: "products",
		Table:  "product",
		Key:    "ProductID",
		Columns: []columnMap{
			{Dest: "product_id", Src: "ProductID"},
			{Dest: "product_name", Src: "ProductName"},
			{Dest: "category", Src: "Category"},
			{Dest: "unit_price", Src: "UnitPrice"},
			{Dest: "stock_quantity", Src: "StockQuantity"},
			{Dest: "supplier_name", Src: "SupplierName"},
		},
	}

	saleSpec = loadSpec{
		Entity: "sales",
		Table:  "sale",
		Key:    "TransactionID",
		Columns: []columnMap{
			{Dest: "sale_id", Src: "TransactionID"},
			{Dest: "customer_id", Src: "CustomerID"},
			{Dest: "product_id", Src: "ProductID"},
			{Dest: "store_id", Src: "StoreID"},
			{Dest: "campaign_id", Src: "CampaignID"},
			{Dest: "sale_date", Src: "SaleDate"},
			{Dest: "sale_amount", Src: "SaleAmount"},
			{Dest: "discount_percent", Src: "DiscountPercent"},
			{Dest: "payment_type", Src: "PaymentType"},
		},
	}
)

// LoadStats summarizes one warehouse load
type LoadStats struct {
	Customers int64
	Products  int64
	Sales     int64
}

// Load replaces the warehouse contents with the given prepared datasets.
// The load is idempotent: within one transaction the fact table is cleared
// first, then the dimensions, and the datasets are re-inserted after
// de-duplicating by primary key (first occurrence kept). Dimensions load
// before facts to satisfy foreign keys.
func (s *Store) Load(ctx context.Context, customers, products, sales *table.Table) (*LoadStats, error) {
	// Verify every dataset's shape before touching the warehouse
	for _, check := range []struct {
		spec loadSpec
		tbl  *table.Table
	}{
		{customerSpec, customers},
		{productSpec, products},
		{saleSpec, sales},
	} {
		if err := check.spec.verify(check.tbl); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.Error(err))
			}
		}
	}()

	// Fact rows first so foreign keys never dangle mid-load
	for _, name := range deleteOrder {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+name); err != nil {
			return nil, fmt.Errorf("failed to clear table %s: %w", name, err)
		}
	}

	stats := &LoadStats{}
	if stats.Customers, err = s.insert(ctx, tx, customerSpec, customers); err != nil {
		return nil, err
	}
	if stats.Products, err = s.insert(ctx, tx, productSpec, products); err != nil {
		return nil, err
	}
	if stats.Sales, err = s.insert(ctx, tx, saleSpec, sales); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Warehouse load complete",
		zap.Int64("customers", stats.Customers),
		zap.Int64("products", stats.Products),
		zap.Int64("sales", stats.Sales))
	return stats, nil
}

// verify checks that every mapped source column exists in the prepared data
func (spec loadSpec) verify(t *table.Table) error {
	var missing []string
	for _, cm := range spec.Columns {
		if !t.HasColumn(cm.Src) {
			missing = append(missing, cm.Src)
		}
	}
	if len(missing) > 0 {
		return &MissingRequiredColumnsError{Entity: spec.Entity, Columns: missing}
	}
	return nil
}

// insert de-duplicates by the spec's key column and bulk inserts the
// remaining rows
func (s *Store) insert(ctx context.Context, tx execer, spec loadSpec, t *table.Table) (int64, error) {
	keyCol, err := t.Column(spec.Key)
	if err != nil {
		return 0, err
	}

	srcCols := make([]*table.Column, len(spec.Columns))
	destNames := make([]string, len(spec.Columns))
	for i, cm := range spec.Columns {
		col, err := t.Column(cm.Src)
		if err != nil {
			return 0, err
		}
		srcCols[i] = col
		destNames[i] = cm.Dest
	}

	placeholders := make([]string, len(spec.Columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	query := s.db.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		spec.Table,
		strings.Join(destNames, ", "),
		strings.Join(placeholders, ", ")))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert for %s: %w", spec.Table, err)
	}
	defer stmt.Close()

	seen := make(map[string]struct{}, t.NumRows())
	var inserted int64
	args := make([]any, len(spec.Columns))
	for i := 0; i < t.NumRows(); i++ {
		key := table.FormatValue(keyCol.Values[i])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		for c, col := range srcCols {
			args[c] = driverValue(col.Values[i])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return inserted, fmt.Errorf("failed to insert %s row %d: %w", spec.Entity, i, err)
		}
		inserted++
	}

	s.logger.Info("Inserted entity records",
		zap.String("table", spec.Table),
		zap.Int64("rows", inserted),
		zap.Int("deduplicated", t.NumRows()-int(inserted)))
	return inserted, nil
}

// driverValue converts a cell to a value both drivers accept. Datetimes are
// stored in their canonical textual form; the missing marker becomes NULL.
func driverValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return table.FormatTime(val)
	default:
		return v
	}
}
