// pkg/prep/products.go
package prep

import (
	"go.uber.org/zap"

	"github.com/smart-store/analytics-pipeline/pkg/scrubber"
	"github.com/smart-store/analytics-pipeline/pkg/table"
)

// CleanProducts applies the product recipe: dedupe, zero-fill the price
// and stock columns, fill remaining text with "N/A", normalize the
// categorical columns, coerce numerics and filter outliers
func CleanProducts(t *table.Table, logger *zap.Logger) (*table.Table, error) {
	if err := trimHeaders(t); err != nil {
		return nil, err
	}
	normalizePlaceholders(t)

	s, err := scrubber.New(t, logger)
	if err != nil {
		return nil, err
	}

	s.RemoveDuplicateRecords()

	// Missing prices and quantities mean "none", not "unknown"
	if err := fillMissing(t, "UnitPrice", 0.0); err != nil {
		return nil, err
	}
	if err := fillMissing(t, "StockQuantity", int64(0)); err != nil {
		return nil, err
	}
	s.HandleMissingData("N/A", false)

	for _, col := range []string{"ProductName", "Category", "SupplierName"} {
		if _, err := s.FormatColumnStringsToLowerAndTrim(col); err != nil {
			return nil, err
		}
	}

	for col, kind := range map[string]table.Kind{
		"ProductID":     table.KindInt,
		"UnitPrice":     table.KindFloat,
		"StockQuantity": table.KindInt,
	} {
		if _, err := s.ConvertColumnToNewType(col, kind); err != nil {
			return nil, err
		}
	}

	if err := FilterIQR(t, "UnitPrice", logger); err != nil {
		return nil, err
	}
	if err := FilterIQR(t, "StockQuantity", logger); err != nil {
		return nil, err
	}
	if err := FilterBounds(t, "UnitPrice", 0, 2000, logger); err != nil {
		return nil, err
	}
	if err := FilterBounds(t, "StockQuantity", 0, 1000, logger); err != nil {
		return nil, err
	}

	return s.Table(), nil
}
