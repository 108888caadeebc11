// pkg/warehouse/query.go
package warehouse

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smart-store/analytics-pipeline/pkg/table"
)

// QueryTable runs an arbitrary query and scans the result set into a
// table. NULLs come back as the missing marker; each column's kind is
// inferred from its first non-missing value.
func (s *Store) QueryTable(ctx context.Context, query string, args ...any) (*table.Table, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	values := make([][]any, len(names))
	for rows.Next() {
		record, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for c := range names {
			values[c] = append(values[c], normalizeScanned(record[c]))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("result iteration failed: %w", err)
	}

	cols := make([]table.Column, len(names))
	for c, name := range names {
		if values[c] == nil {
			values[c] = []any{}
		}
		cols[c] = table.Column{Name: name, Kind: inferKind(values[c]), Values: values[c]}
	}
	return table.New(cols...)
}

// SalesMart returns the fact rows joined with the product category and
// customer region, the data mart the default profitability cube is built
// from. Left joins keep fact rows whose dimensions are absent; those rows
// carry the missing marker and fall out of the cube grouping.
func (s *Store) SalesMart(ctx context.Context) (*table.Table, error) {
	const query = `
		SELECT
			sale.sale_id,
			sale.customer_id,
			sale.product_id,
			sale.sale_date,
			sale.sale_amount,
			sale.discount_percent,
			sale.payment_type,
			product.category,
			customer.region
		FROM sale
		LEFT JOIN product  ON product.product_id   = sale.product_id
		LEFT JOIN customer ON customer.customer_id = sale.customer_id
	`

	t, err := s.QueryTable(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to build sales mart: %w", err)
	}

	s.logger.Info("Sales mart loaded from warehouse",
		zap.Int("rows", t.NumRows()),
		zap.Int("columns", t.NumCols()))
	return t, nil
}

// normalizeScanned maps driver-specific scan results onto table cell types
func normalizeScanned(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case float32:
		return float64(val)
	case time.Time:
		return val
	default:
		return v
	}
}

func inferKind(values []any) table.Kind {
	for _, v := range values {
		switch v.(type) {
		case nil:
			continue
		case int64:
			return table.KindInt
		case float64:
			return table.KindFloat
		case time.Time:
			return table.KindDateTime
		default:
			return table.KindText
		}
	}
	return table.KindText
}
