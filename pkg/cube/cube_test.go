package cube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smart-store/analytics-pipeline/pkg/table"
)

func salesMart(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.Column{Name: "sale_id", Kind: table.KindInt, Values: []any{
			int64(1), int64(2), int64(3), int64(4), int64(5), int64(6),
		}},
		table.Column{Name: "region", Kind: table.KindText, Values: []any{
			"east", "east", "west", "west", nil, "east",
		}},
		table.Column{Name: "category", Kind: table.KindText, Values: []any{
			"electronics", "clothing", "electronics", "electronics", "clothing", "electronics",
		}},
		table.Column{Name: "sale_amount", Kind: table.KindFloat, Values: []any{
			100.0, 50.0, 200.0, 300.0, 75.0, nil,
		}},
	)
	require.NoError(t, err)
	return tbl
}

func TestBuildGroupsAndAggregates(t *testing.T) {
	mart := salesMart(t)

	got, err := Build(mart,
		[]string{"region", "category"},
		[]Metric{
			{Column: "sale_amount", Funcs: []Aggregate{AggSum, AggMean}},
			{Column: "sale_id", Funcs: []Aggregate{AggCount}},
		},
		nil)
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"region", "category", "sale_amount_sum", "sale_amount_mean", "sale_id_count"},
		got.Columns())

	// Row 5 has a missing region and is excluded; groups sort by key
	assert.Equal(t, 3, got.NumRows())
	assert.Equal(t, []any{"east", "clothing", 50.0, 50.0, int64(1)}, got.Row(0))
	// east/electronics: sale 6 has a missing amount, so sum/mean fold one
	// value but count still sees both sale_ids
	assert.Equal(t, []any{"east", "electronics", 100.0, 100.0, int64(2)}, got.Row(1))
	assert.Equal(t, []any{"west", "electronics", 500.0, 250.0, int64(2)}, got.Row(2))
}

func TestBuildSingleDimension(t *testing.T) {
	mart := salesMart(t)

	got, err := Build(mart,
		[]string{"category"},
		[]Metric{{Column: "sale_amount", Funcs: []Aggregate{AggMin, AggMax}}},
		nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"category", "sale_amount_min", "sale_amount_max"}, got.Columns())
	assert.Equal(t, 2, got.NumRows())
	assert.Equal(t, []any{"clothing", 50.0, 75.0}, got.Row(0))
	assert.Equal(t, []any{"electronics", 100.0, 300.0}, got.Row(1))
}

func TestBuildAllNumericValuesMissing(t *testing.T) {
	tbl, err := table.New(
		table.Column{Name: "region", Kind: table.KindText, Values: []any{"east", "east"}},
		table.Column{Name: "sale_amount", Kind: table.KindFloat, Values: []any{nil, nil}},
	)
	require.NoError(t, err)

	got, err := Build(tbl,
		[]string{"region"},
		[]Metric{{Column: "sale_amount", Funcs: []Aggregate{AggSum, AggMean, AggCount}}},
		nil)
	require.NoError(t, err)

	require.Equal(t, 1, got.NumRows())
	// Arithmetic over an empty set is missing; count of present values is 0
	assert.Equal(t, []any{"east", nil, nil, int64(0)}, got.Row(0))
}

func TestBuildUnknownColumns(t *testing.T) {
	mart := salesMart(t)

	_, err := Build(mart, []string{"nope"}, []Metric{{Column: "sale_amount", Funcs: []Aggregate{AggSum}}}, nil)
	assert.True(t, table.IsColumnNotFound(err))

	_, err = Build(mart, []string{"region"}, []Metric{{Column: "nope", Funcs: []Aggregate{AggSum}}}, nil)
	assert.True(t, table.IsColumnNotFound(err))
}

func TestBuildRequiresDimensions(t *testing.T) {
	_, err := Build(salesMart(t), nil, []Metric{{Column: "sale_amount", Funcs: []Aggregate{AggSum}}}, nil)
	assert.Error(t, err)
}

func TestBuildRequiresAggregateFuncs(t *testing.T) {
	_, err := Build(salesMart(t), []string{"region"}, []Metric{{Column: "sale_amount"}}, nil)
	assert.Error(t, err)
}

func TestBuildDimensionKindsCarried(t *testing.T) {
	tbl, err := table.New(
		table.Column{Name: "store_id", Kind: table.KindInt, Values: []any{int64(1), int64(1), int64(2)}},
		table.Column{Name: "sale_amount", Kind: table.KindFloat, Values: []any{10.0, 20.0, 30.0}},
	)
	require.NoError(t, err)

	got, err := Build(tbl, []string{"store_id"},
		[]Metric{{Column: "sale_amount", Funcs: []Aggregate{AggSum}}}, nil)
	require.NoError(t, err)

	dim, err := got.Column("store_id")
	require.NoError(t, err)
	assert.Equal(t, table.KindInt, dim.Kind)

	agg, err := got.Column("sale_amount_sum")
	require.NoError(t, err)
	assert.Equal(t, table.KindFloat, agg.Kind)
}

func TestColumnNames(t *testing.T) {
	names := ColumnNames(
		[]string{"region"},
		[]Metric{{Column: "sale_amount", Funcs: []Aggregate{AggSum, AggCount}}},
	)
	assert.Equal(t, []string{"region", "sale_amount_sum", "sale_amount_count"}, names)
}

func TestAccumulatorSkipsNonNumeric(t *testing.T) {
	a := &accumulator{}
	a.add(10.0)
	a.add("garbage")
	a.add(nil)
	a.add(20.0)

	assert.Equal(t, int64(3), a.result(AggCount), "count includes non-numeric present values")
	assert.Equal(t, 30.0, a.result(AggSum))
	assert.Equal(t, 15.0, a.result(AggMean), "mean divides by numeric values only")
	assert.Equal(t, 10.0, a.result(AggMin))
	assert.Equal(t, 20.0, a.result(AggMax))
}
