// pkg/csvio/csvio.go
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/smart-store/analytics-pipeline/pkg/table"
)

// ReadTable loads a delimited file with a header row into a table. Every
// column starts as text; an empty field is normalized to the missing marker
// at this boundary, since a delimited file cannot distinguish the two.
// No schema is enforced here; columns may be missing, extra or mistyped.
func ReadTable(path string, logger *zap.Logger) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file %s has no header row", path)
	}

	header := records[0]
	cols := make([]table.Column, len(header))
	for c, name := range header {
		values := make([]any, 0, len(records)-1)
		for _, record := range records[1:] {
			if c >= len(record) || record[c] == "" {
				values = append(values, nil)
				continue
			}
			values = append(values, record[c])
		}
		cols[c] = table.Column{Name: name, Kind: table.KindText, Values: values}
	}

	t, err := table.New(cols...)
	if err != nil {
		return nil, fmt.Errorf("malformed table in %s: %w", path, err)
	}

	if logger != nil {
		logger.Info("Loaded delimited file",
			zap.String("path", path),
			zap.Int("rows", t.NumRows()),
			zap.Int("columns", t.NumCols()))
	}
	return t, nil
}

// WriteTable persists a table as a delimited file with a header row, one
// record per row, in the table's column order. Missing cells are written as
// empty fields. Parent directories are created as needed.
func WriteTable(path string, t *table.Table, logger *zap.Logger) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns()); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}

	record := make([]string, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for c, v := range t.Row(i) {
			record[c] = table.FormatValue(v)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d to %s: %w", i, path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	if logger != nil {
		logger.Info("Saved delimited file",
			zap.String("path", path),
			zap.Int("rows", t.NumRows()))
	}
	return nil
}
