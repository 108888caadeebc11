// pkg/prep/sales.go
package prep

import (
	"go.uber.org/zap"

	"github.com/smart-store/analytics-pipeline/pkg/scrubber"
	"github.com/smart-store/analytics-pipeline/pkg/table"
)

// CleanSales applies the sales recipe. Garbage text in the numeric columns
// is blanked before conversion, rows without a sale amount are dropped
// (critical data), the rest is filled, normalized and bounds-checked.
func CleanSales(t *table.Table, logger *zap.Logger) (*table.Table, error) {
	if err := trimHeaders(t); err != nil {
		return nil, err
	}
	normalizePlaceholders(t)

	s, err := scrubber.New(t, logger)
	if err != nil {
		return nil, err
	}

	s.RemoveDuplicateRecords()

	if err := stripPercent(t, "DiscountPercent"); err != nil {
		return nil, err
	}
	for _, col := range []string{"SaleAmount", "DiscountPercent"} {
		if err := scrubNonNumeric(t, col); err != nil {
			return nil, err
		}
	}

	if err := dropMissing(t, "SaleAmount"); err != nil {
		return nil, err
	}
	if err := fillMissing(t, "DiscountPercent", 0.0); err != nil {
		return nil, err
	}
	if err := fillMissing(t, "CampaignID", "N/A"); err != nil {
		return nil, err
	}

	if _, err := s.FormatColumnStringsToLowerAndTrim("PaymentType"); err != nil {
		return nil, err
	}

	if err := parseDateColumn(t, "SaleDate"); err != nil {
		return nil, err
	}

	for col, kind := range map[string]table.Kind{
		"TransactionID":   table.KindInt,
		"CustomerID":      table.KindInt,
		"SaleAmount":      table.KindFloat,
		"DiscountPercent": table.KindFloat,
	} {
		if _, err := s.ConvertColumnToNewType(col, kind); err != nil {
			return nil, err
		}
	}

	for _, col := range []string{"SaleAmount", "DiscountPercent"} {
		if err := FilterIQR(t, col, logger); err != nil {
			return nil, err
		}
	}
	if err := FilterBounds(t, "SaleAmount", 0, 10000, logger); err != nil {
		return nil, err
	}
	if err := FilterBounds(t, "DiscountPercent", 0, 100, logger); err != nil {
		return nil, err
	}

	return s.Table(), nil
}
