// pkg/prep/prep.go
package prep

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/smart-store/analytics-pipeline/pkg/csvio"
	"github.com/smart-store/analytics-pipeline/pkg/table"
)

// CleanFunc applies one entity's cleaning recipe to a raw table
type CleanFunc func(t *table.Table, logger *zap.Logger) (*table.Table, error)

// Entity ties a raw file to its prepared output and cleaning recipe
type Entity struct {
	Name     string
	RawFile  string
	Prepared string
	Clean    CleanFunc
}

// Entities lists the datasets the preparation stage processes, in order
var Entities = []Entity{
	{Name: "customers", RawFile: "customers_data.csv", Prepared: "customers_prepared.csv", Clean: CleanCustomers},
	{Name: "products", RawFile: "products_data.csv", Prepared: "products_prepared.csv", Clean: CleanProducts},
	{Name: "sales", RawFile: "sales_data.csv", Prepared: "sales_prepared.csv", Clean: CleanSales},
}

// Preparer reads raw entity files, cleans them and writes prepared files
type Preparer struct {
	RawDir      string
	PreparedDir string
	logger      *zap.Logger
}

// NewPreparer creates a Preparer for the given directories
func NewPreparer(rawDir, preparedDir string, logger *zap.Logger) (*Preparer, error) {
	if rawDir == "" || preparedDir == "" {
		return nil, errors.New("raw and prepared directories are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Preparer{RawDir: rawDir, PreparedDir: preparedDir, logger: logger}, nil
}

// PrepareAll processes every entity. A failure in one entity is logged and
// does not stop the others; the combined error is returned at the end.
func (p *Preparer) PrepareAll() error {
	var errs []error
	for _, entity := range Entities {
		if err := p.Prepare(entity); err != nil {
			p.logger.Error("Entity preparation failed",
				zap.String("entity", entity.Name),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", entity.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Prepare runs one entity's read-clean-save cycle
func (p *Preparer) Prepare(entity Entity) error {
	logger := p.logger.Named(entity.Name)

	raw, err := csvio.ReadTable(filepath.Join(p.RawDir, entity.RawFile), logger)
	if err != nil {
		return err
	}

	before := raw.NumRows()
	cleaned, err := entity.Clean(raw, logger)
	if err != nil {
		return err
	}

	if err := csvio.WriteTable(filepath.Join(p.PreparedDir, entity.Prepared), cleaned, logger); err != nil {
		return err
	}

	logger.Info("Entity prepared",
		zap.Int("raw_rows", before),
		zap.Int("prepared_rows", cleaned.NumRows()))
	return nil
}

// --- shared recipe helpers ---

// trimHeaders strips surrounding whitespace from column names
func trimHeaders(t *table.Table) error {
	for _, name := range t.Columns() {
		trimmed := strings.TrimSpace(name)
		if trimmed == name {
			continue
		}
		if err := t.Rename(name, trimmed); err != nil {
			return err
		}
	}
	return nil
}

// placeholders are textual stand-ins for "no data" in the raw files
var placeholders = map[string]struct{}{
	"NULL": {},
	"null": {},
	"NaN":  {},
}

// normalizePlaceholders converts placeholder strings to the missing marker
// across every column
func normalizePlaceholders(t *table.Table) {
	for _, name := range t.Columns() {
		col, _ := t.Column(name)
		for i, v := range col.Values {
			if s, ok := v.(string); ok {
				if _, hit := placeholders[strings.TrimSpace(s)]; hit {
					col.Values[i] = nil
				}
			}
		}
	}
}

// fillMissing replaces missing cells in one column with a literal value
func fillMissing(t *table.Table, name string, value any) error {
	col, err := t.Column(name)
	if err != nil {
		return err
	}
	for i, v := range col.Values {
		if v == nil {
			col.Values[i] = value
		}
	}
	return nil
}

// dropMissing removes rows where the named column is missing
func dropMissing(t *table.Table, name string) error {
	col, err := t.Column(name)
	if err != nil {
		return err
	}
	t.Filter(func(i int) bool { return col.Values[i] != nil })
	return nil
}

// parseDateColumn coerces a column to datetimes in place; unparseable
// values become missing
func parseDateColumn(t *table.Table, name string) error {
	col, err := t.Column(name)
	if err != nil {
		return err
	}
	for i, v := range col.Values {
		if v == nil {
			continue
		}
		parsed, err := table.CoerceTime(v)
		if err != nil {
			col.Values[i] = nil
			continue
		}
		col.Values[i] = parsed
	}
	col.Kind = table.KindDateTime
	return nil
}

var nonNumericPattern = regexp.MustCompile(`[^0-9.\-]`)

// scrubNonNumeric blanks out values carrying characters that can never be
// part of a number, so a later numeric conversion sees only clean text
func scrubNonNumeric(t *table.Table, name string) error {
	col, err := t.Column(name)
	if err != nil {
		return err
	}
	for i, v := range col.Values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if nonNumericPattern.MatchString(strings.TrimSpace(s)) {
			col.Values[i] = nil
		}
	}
	return nil
}

// stripPercent removes a trailing percent sign from textual cells
func stripPercent(t *table.Table, name string) error {
	col, err := t.Column(name)
	if err != nil {
		return err
	}
	for i, v := range col.Values {
		if s, ok := v.(string); ok {
			col.Values[i] = strings.TrimSuffix(strings.TrimSpace(s), "%")
		}
	}
	return nil
}
