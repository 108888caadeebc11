// pkg/prep/customers.go
package prep

import (
	"go.uber.org/zap"

	"github.com/smart-store/analytics-pipeline/pkg/scrubber"
	"github.com/smart-store/analytics-pipeline/pkg/table"
)

// CleanCustomers applies the customer recipe: dedupe, fill missing text
// with "N/A", normalize the categorical columns, parse the join date and
// coerce the numeric identifiers
func CleanCustomers(t *table.Table, logger *zap.Logger) (*table.Table, error) {
	if err := trimHeaders(t); err != nil {
		return nil, err
	}
	normalizePlaceholders(t)

	s, err := scrubber.New(t, logger)
	if err != nil {
		return nil, err
	}

	s.RemoveDuplicateRecords()
	s.HandleMissingData("N/A", false)

	for _, col := range []string{"Name", "Region", "PreferredContactMethod"} {
		if _, err := s.FormatColumnStringsToLowerAndTrim(col); err != nil {
			return nil, err
		}
	}

	// Bad date strings (month 13 and the like) coerce to missing
	if err := parseDateColumn(t, "JoinDate"); err != nil {
		return nil, err
	}

	for col, kind := range map[string]table.Kind{
		"CustomerID":    table.KindInt,
		"LoyaltyPoints": table.KindInt,
	} {
		if _, err := s.ConvertColumnToNewType(col, kind); err != nil {
			return nil, err
		}
	}

	return s.Table(), nil
}
