// pkg/scrubber/scrubber.go
package scrubber

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/smart-store/analytics-pipeline/pkg/table"
)

// StandardDateTimeColumn is the fixed name of the column added by
// ParseDatesToAddStandardDateTime
const StandardDateTimeColumn = "StandardDateTime"

// Scrubber owns one in-progress table and applies cleaning operations to it.
// Every operation mutates the owned table in place and returns it, so calls
// can be chained or used statement-style. Data-quality problems (bad dates,
// non-numeric text) are coerced to the missing marker; the only error any
// operation returns is a reference to a column that does not exist.
//
// A Scrubber is not safe for concurrent use; callers needing parallelism
// should use one Scrubber per worker.
type Scrubber struct {
	tbl    *table.Table
	logger *zap.Logger
}

// New creates a Scrubber that takes ownership of tbl. The table is mutated
// directly; callers needing the original must clone it first.
func New(tbl *table.Table, logger *zap.Logger) (*Scrubber, error) {
	if tbl == nil {
		return nil, errors.New("table cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scrubber{tbl: tbl, logger: logger}, nil
}

// Table returns the owned table for handoff to a sink
func (s *Scrubber) Table() *table.Table {
	return s.tbl
}

// RemoveDuplicateRecords drops rows whose values equal a previously seen
// row across every column, keeping the first occurrence. Relative order of
// surviving rows is preserved. Idempotent.
func (s *Scrubber) RemoveDuplicateRecords() *table.Table {
	before := s.tbl.NumRows()
	seen := make(map[string]struct{}, before)
	s.tbl.Filter(func(i int) bool {
		key := rowFingerprint(s.tbl, i)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
	if removed := before - s.tbl.NumRows(); removed > 0 {
		s.logger.Info("Removed duplicate records",
			zap.Int("removed", removed),
			zap.Int("remaining", s.tbl.NumRows()))
	}
	return s.tbl
}

// HandleMissingData resolves missing cells across the whole table.
// When drop is true, any row with at least one missing cell is removed and
// fillValue is ignored. Otherwise, when fillValue is non-nil, every missing
// cell in every column is replaced with that literal value regardless of
// the column's kind; reconciling the kind afterwards is the caller's job.
// With neither supplied the call is a no-op.
func (s *Scrubber) HandleMissingData(fillValue any, drop bool) *table.Table {
	switch {
	case drop:
		before := s.tbl.NumRows()
		s.tbl.Filter(func(i int) bool { return !s.tbl.RowHasMissing(i) })
		s.logger.Info("Dropped rows with missing values",
			zap.Int("dropped", before-s.tbl.NumRows()),
			zap.Int("remaining", s.tbl.NumRows()))
	case fillValue != nil:
		filled := 0
		for _, name := range s.tbl.Columns() {
			col, _ := s.tbl.Column(name)
			for i, v := range col.Values {
				if v == nil {
					col.Values[i] = fillValue
					filled++
				}
			}
		}
		s.logger.Info("Filled missing values", zap.Int("filled", filled))
	}
	return s.tbl
}

// FormatColumnStringsToLowerAndTrim converts every non-missing value in the
// named column to text, trims surrounding whitespace and lower-cases it.
// Missing values are left untouched. The column's kind becomes text.
func (s *Scrubber) FormatColumnStringsToLowerAndTrim(name string) (*table.Table, error) {
	col, err := s.tbl.Column(name)
	if err != nil {
		return nil, err
	}
	for i, v := range col.Values {
		if v == nil {
			continue
		}
		str, err := table.CoerceString(v)
		if err != nil {
			// No textual form for this cell; treat as a data-quality
			// problem and coerce to missing
			col.Values[i] = nil
			continue
		}
		col.Values[i] = lowerTrim(str)
	}
	col.Kind = table.KindText
	return s.tbl, nil
}

// ParseDatesToAddStandardDateTime parses the named column's values as dates
// and stores the results in a StandardDateTime column appended to the table
// (replaced in place when it already exists). The source column is left
// unchanged; unparseable values map to the missing marker rather than an
// error.
func (s *Scrubber) ParseDatesToAddStandardDateTime(name string) (*table.Table, error) {
	col, err := s.tbl.Column(name)
	if err != nil {
		return nil, err
	}
	parsed := make([]any, len(col.Values))
	bad := 0
	for i, v := range col.Values {
		if v == nil {
			continue
		}
		t, err := table.CoerceTime(v)
		if err != nil {
			bad++
			continue
		}
		parsed[i] = t
	}
	if err := s.tbl.SetColumn(table.Column{
		Name:   StandardDateTimeColumn,
		Kind:   table.KindDateTime,
		Values: parsed,
	}); err != nil {
		return nil, err
	}
	if bad > 0 {
		s.logger.Warn("Unparseable dates coerced to missing",
			zap.String("column", name),
			zap.Int("count", bad))
	}
	return s.tbl, nil
}

// RenameColumns renames columns per the old-to-new mapping. Every old name
// must exist; on failure the table is left completely unmutated. Unmapped
// columns, column order and values are unchanged.
func (s *Scrubber) RenameColumns(mapping map[string]string) (*table.Table, error) {
	for oldName := range mapping {
		if !s.tbl.HasColumn(oldName) {
			return nil, &table.ColumnNotFoundError{Column: oldName}
		}
	}
	for oldName, newName := range mapping {
		if err := s.tbl.Rename(oldName, newName); err != nil {
			return nil, err
		}
	}
	return s.tbl, nil
}

// ConvertColumnToNewType coerces every non-missing value in the named
// column to the target kind (text, 64-bit nullable integer or float).
// Values that cannot be coerced become missing; the conversion never fails
// on bad cell data.
func (s *Scrubber) ConvertColumnToNewType(name string, kind table.Kind) (*table.Table, error) {
	col, err := s.tbl.Column(name)
	if err != nil {
		return nil, err
	}
	coerced := 0
	for i, v := range col.Values {
		if v == nil {
			continue
		}
		converted, err := table.Coerce(v, kind)
		if err != nil {
			col.Values[i] = nil
			coerced++
			continue
		}
		col.Values[i] = converted
	}
	col.Kind = kind
	if coerced > 0 {
		s.logger.Warn("Values coerced to missing during type conversion",
			zap.String("column", name),
			zap.String("target", kind.String()),
			zap.Int("count", coerced))
	}
	return s.tbl, nil
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
