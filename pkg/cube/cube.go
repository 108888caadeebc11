// pkg/cube/cube.go
package cube

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/smart-store/analytics-pipeline/pkg/table"
)

// Aggregate names a supported aggregation function
type Aggregate string

const (
	AggSum   Aggregate = "sum"
	AggMean  Aggregate = "mean"
	AggCount Aggregate = "count"
	AggMin   Aggregate = "min"
	AggMax   Aggregate = "max"
)

// Metric requests one or more aggregations over a source column
type Metric struct {
	Column string
	Funcs  []Aggregate
}

// ColumnNames returns the output column names for a cube: the dimension
// columns followed by one "<source>_<func>" column per requested aggregate
func ColumnNames(dims []string, metrics []Metric) []string {
	names := make([]string, 0, len(dims)+len(metrics))
	names = append(names, dims...)
	for _, m := range metrics {
		for _, fn := range m.Funcs {
			name := fmt.Sprintf("%s_%s", m.Column, fn)
			name = strings.TrimRight(strings.ReplaceAll(name, "__", "_"), "_")
			names = append(names, name)
		}
	}
	return names
}

// Build groups the input by the dimension columns and computes the
// requested aggregates per group. Rows with a missing value in any
// dimension are excluded from the grouping. Groups are emitted in sorted
// key order. Unknown dimension or metric columns fail with ColumnNotFound.
func Build(t *table.Table, dims []string, metrics []Metric, logger *zap.Logger) (*table.Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("at least one dimension is required")
	}

	dimCols := make([]*table.Column, len(dims))
	for i, name := range dims {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		dimCols[i] = col
	}
	metricCols := make([]*table.Column, len(metrics))
	for i, m := range metrics {
		col, err := t.Column(m.Column)
		if err != nil {
			return nil, err
		}
		if len(m.Funcs) == 0 {
			return nil, fmt.Errorf("metric %s requests no aggregate functions", m.Column)
		}
		metricCols[i] = col
	}

	type group struct {
		key      string
		dimVals  []any
		accs     [][]*accumulator
		rowCount int
	}

	groups := make(map[string]*group)
	for i := 0; i < t.NumRows(); i++ {
		key, dimVals, ok := groupKey(dimCols, i)
		if !ok {
			continue
		}
		g := groups[key]
		if g == nil {
			g = &group{key: key, dimVals: dimVals}
			g.accs = make([][]*accumulator, len(metrics))
			for m := range metrics {
				g.accs[m] = make([]*accumulator, len(metrics[m].Funcs))
				for f := range metrics[m].Funcs {
					g.accs[m][f] = &accumulator{}
				}
			}
			groups[key] = g
		}
		g.rowCount++
		for m, col := range metricCols {
			for f := range metrics[m].Funcs {
				g.accs[m][f].add(col.Values[i])
			}
		}
	}

	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(a, b int) bool { return ordered[a].key < ordered[b].key })

	names := ColumnNames(dims, metrics)
	cols := make([]table.Column, len(names))
	for c, name := range names {
		cols[c] = table.Column{Name: name, Kind: table.KindText, Values: make([]any, 0, len(ordered))}
	}

	for _, g := range ordered {
		c := 0
		for d := range dims {
			cols[c].Values = append(cols[c].Values, g.dimVals[d])
			c++
		}
		for m, metric := range metrics {
			for f, fn := range metric.Funcs {
				cols[c].Values = append(cols[c].Values, g.accs[m][f].result(fn))
				c++
			}
		}
	}

	// Carry dimension kinds through; aggregate columns are numeric
	for d := range dims {
		cols[d].Kind = dimCols[d].Kind
	}
	for c := len(dims); c < len(cols); c++ {
		cols[c].Kind = table.KindFloat
	}

	out, err := table.New(cols...)
	if err != nil {
		return nil, err
	}

	logger.Info("OLAP cube created",
		zap.Strings("dimensions", dims),
		zap.Int("groups", out.NumRows()))
	return out, nil
}

// groupKey builds a sortable composite key from the dimension cells at row
// i; ok is false when any dimension value is missing
func groupKey(dimCols []*table.Column, i int) (string, []any, bool) {
	var b strings.Builder
	dimVals := make([]any, len(dimCols))
	for d, col := range dimCols {
		v := col.Values[i]
		if v == nil {
			return "", nil, false
		}
		dimVals[d] = v
		b.WriteString(table.FormatValue(v))
		b.WriteByte('\x1f')
	}
	return b.String(), dimVals, true
}
