// pkg/prep/outliers.go
package prep

import (
	"sort"

	"go.uber.org/zap"

	"github.com/smart-store/analytics-pipeline/pkg/table"
)

// FilterIQR removes rows whose value in the named column falls outside the
// 1.5×IQR fence computed over the column's non-missing numeric values.
// Rows whose cell is missing or non-numeric are kept; dropping those is a
// separate, explicit decision.
func FilterIQR(t *table.Table, name string, logger *zap.Logger) error {
	col, err := t.Column(name)
	if err != nil {
		return err
	}

	numeric := make([]float64, 0, len(col.Values))
	for _, v := range col.Values {
		if v == nil {
			continue
		}
		if f, err := table.CoerceFloat64(v); err == nil {
			numeric = append(numeric, f)
		}
	}
	if len(numeric) < 4 {
		// Not enough data for meaningful quartiles
		return nil
	}
	sort.Float64s(numeric)

	q1 := quantile(numeric, 0.25)
	q3 := quantile(numeric, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	before := t.NumRows()
	t.Filter(func(i int) bool {
		v := col.Values[i]
		if v == nil {
			return true
		}
		f, err := table.CoerceFloat64(v)
		if err != nil {
			return true
		}
		return f >= lower && f <= upper
	})

	if removed := before - t.NumRows(); removed > 0 && logger != nil {
		logger.Info("Removed outlier rows by IQR fence",
			zap.String("column", name),
			zap.Float64("lower", lower),
			zap.Float64("upper", upper),
			zap.Int("removed", removed))
	}
	return nil
}

// FilterBounds removes rows whose value in the named column falls outside
// the inclusive [lo, hi] business limits. Missing and non-numeric cells
// are kept.
func FilterBounds(t *table.Table, name string, lo, hi float64, logger *zap.Logger) error {
	col, err := t.Column(name)
	if err != nil {
		return err
	}

	before := t.NumRows()
	t.Filter(func(i int) bool {
		v := col.Values[i]
		if v == nil {
			return true
		}
		f, err := table.CoerceFloat64(v)
		if err != nil {
			return true
		}
		return f >= lo && f <= hi
	})

	if removed := before - t.NumRows(); removed > 0 && logger != nil {
		logger.Info("Removed rows outside business limits",
			zap.String("column", name),
			zap.Float64("lo", lo),
			zap.Float64("hi", hi),
			zap.Int("removed", removed))
	}
	return nil
}

// quantile computes the q-th quantile of sorted values by linear
// interpolation, matching the conventional midpoint method
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
