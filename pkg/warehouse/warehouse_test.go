package warehouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smart-store/analytics-pipeline/pkg/config"
	"github.com/smart-store/analytics-pipeline/pkg/connector"
	"github.com/smart-store/analytics-pipeline/pkg/table"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	cfg := &config.WarehouseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: ":memory:",
	}
	conn, err := connector.NewSQLiteConnector(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	store, err := NewStore(conn, nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateSchema(ctx))
	return store
}

func preparedCustomers(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.Column{Name: "CustomerID", Kind: table.KindInt, Values: []any{int64(1), int64(2)}},
		table.Column{Name: "Name", Kind: table.KindText, Values: []any{"alice", "bob"}},
		table.Column{Name: "Region", Kind: table.KindText, Values: []any{"east", "west"}},
		table.Column{Name: "JoinDate", Kind: table.KindDateTime, Values: []any{
			time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), nil,
		}},
		table.Column{Name: "LoyaltyPoints", Kind: table.KindInt, Values: []any{int64(100), int64(250)}},
		table.Column{Name: "PreferredContactMethod", Kind: table.KindText, Values: []any{"email", "phone"}},
	)
	require.NoError(t, err)
	return tbl
}

func preparedProducts(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.Column{Name: "ProductID", Kind: table.KindInt, Values: []any{int64(10), int64(11)}},
		table.Column{Name: "ProductName", Kind: table.KindText, Values: []any{"widget", "gizmo"}},
		table.Column{Name: "Category", Kind: table.KindText, Values: []any{"gadgets", "tools"}},
		table.Column{Name: "UnitPrice", Kind: table.KindFloat, Values: []any{9.99, 24.5}},
		table.Column{Name: "StockQuantity", Kind: table.KindInt, Values: []any{int64(5), int64(8)}},
		table.Column{Name: "SupplierName", Kind: table.KindText, Values: []any{"acme", "acme"}},
	)
	require.NoError(t, err)
	return tbl
}

func preparedSales(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.Column{Name: "TransactionID", Kind: table.KindInt, Values: []any{int64(1), int64(2), int64(3)}},
		table.Column{Name: "CustomerID", Kind: table.KindInt, Values: []any{int64(1), int64(2), int64(1)}},
		table.Column{Name: "ProductID", Kind: table.KindInt, Values: []any{int64(10), int64(10), int64(11)}},
		table.Column{Name: "StoreID", Kind: table.KindInt, Values: []any{int64(1), int64(1), int64(2)}},
		table.Column{Name: "CampaignID", Kind: table.KindText, Values: []any{"c1", "N/A", "c2"}},
		table.Column{Name: "SaleDate", Kind: table.KindDateTime, Values: []any{
			time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 1, 7, 0, 0, 0, 0, time.UTC),
		}},
		table.Column{Name: "SaleAmount", Kind: table.KindFloat, Values: []any{100.0, 150.0, 75.5}},
		table.Column{Name: "DiscountPercent", Kind: table.KindFloat, Values: []any{10.0, 0.0, nil}},
		table.Column{Name: "PaymentType", Kind: table.KindText, Values: []any{"cash", "card", "cash"}},
	)
	require.NoError(t, err)
	return tbl
}

func TestLoad(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	stats, err := store.Load(ctx, preparedCustomers(t), preparedProducts(t), preparedSales(t))
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Customers)
	assert.Equal(t, int64(2), stats.Products)
	assert.Equal(t, int64(3), stats.Sales)

	got, err := store.QueryTable(ctx, "SELECT name, region, join_date FROM customer ORDER BY customer_id")
	require.NoError(t, err)
	assert.Equal(t, []any{"alice", "bob"}, mustColumn(t, got, "name").Values)
	assert.Equal(t, "2023-01-01", mustColumn(t, got, "join_date").Values[0])
	assert.Nil(t, mustColumn(t, got, "join_date").Values[1], "missing cells load as NULL")
}

func TestLoadIsIdempotent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.Load(ctx, preparedCustomers(t), preparedProducts(t), preparedSales(t))
	require.NoError(t, err)

	// A second load replaces, never appends
	stats, err := store.Load(ctx, preparedCustomers(t), preparedProducts(t), preparedSales(t))
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Sales)

	got, err := store.QueryTable(ctx, "SELECT COUNT(*) AS n FROM sale")
	require.NoError(t, err)
	assert.Equal(t, int64(3), mustColumn(t, got, "n").Values[0])
}

func TestLoadDeduplicatesByPrimaryKey(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	customers := preparedCustomers(t)
	require.NoError(t, customers.AppendRow([]any{
		int64(1), "alice again", "north", nil, int64(999), "sms",
	}))

	stats, err := store.Load(ctx, customers, preparedProducts(t), preparedSales(t))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Customers, "first occurrence wins")

	got, err := store.QueryTable(ctx, "SELECT name FROM customer WHERE customer_id = 1")
	require.NoError(t, err)
	require.Equal(t, 1, got.NumRows())
	assert.Equal(t, "alice", mustColumn(t, got, "name").Values[0])
}

func TestLoadMissingRequiredColumns(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	bad, err := table.New(
		table.Column{Name: "CustomerID", Kind: table.KindInt, Values: []any{int64(1)}},
		table.Column{Name: "Name", Kind: table.KindText, Values: []any{"alice"}},
	)
	require.NoError(t, err)

	_, err = store.Load(ctx, bad, preparedProducts(t), preparedSales(t))

	var missing *MissingRequiredColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "customers", missing.Entity)
	assert.ElementsMatch(t,
		[]string{"Region", "JoinDate", "LoyaltyPoints", "PreferredContactMethod"},
		missing.Columns)

	// The shape check runs before any delete; the warehouse is untouched
	_, err = store.Load(ctx, preparedCustomers(t), preparedProducts(t), preparedSales(t))
	require.NoError(t, err)
	_, err = store.Load(ctx, bad, preparedProducts(t), preparedSales(t))
	require.Error(t, err)

	got, err := store.QueryTable(ctx, "SELECT COUNT(*) AS n FROM customer")
	require.NoError(t, err)
	assert.Equal(t, int64(2), mustColumn(t, got, "n").Values[0])
}

func TestSalesMart(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.Load(ctx, preparedCustomers(t), preparedProducts(t), preparedSales(t))
	require.NoError(t, err)

	mart, err := store.SalesMart(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, mart.NumRows())
	assert.True(t, mart.HasColumn("region"))
	assert.True(t, mart.HasColumn("category"))
	assert.True(t, mart.HasColumn("sale_amount"))

	regions := mustColumn(t, mart, "region")
	assert.ElementsMatch(t, []any{"east", "west", "east"}, regions.Values)
}

func TestLoadRejectsUnknownDimensionKeys(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.Load(ctx, preparedCustomers(t), preparedProducts(t), preparedSales(t))
	require.NoError(t, err)

	orphan := preparedSales(t)
	require.NoError(t, orphan.AppendRow([]any{
		int64(4), int64(99), int64(10), int64(1), "c9",
		time.Date(2023, 1, 8, 0, 0, 0, 0, time.UTC), 60.0, 0.0, "cash",
	}))

	_, err = store.Load(ctx, preparedCustomers(t), preparedProducts(t), orphan)
	require.Error(t, err, "fact rows referencing unknown dimensions violate foreign keys")

	// The failed load rolled back; the previous contents survive
	got, err := store.QueryTable(ctx, "SELECT COUNT(*) AS n FROM sale")
	require.NoError(t, err)
	assert.Equal(t, int64(3), mustColumn(t, got, "n").Values[0])
}

func TestQueryTableEmptyResult(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	got, err := store.QueryTable(ctx, "SELECT customer_id, name FROM customer WHERE 1 = 0")
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumRows())
	assert.Equal(t, []string{"customer_id", "name"}, got.Columns())
}

func TestNewStoreRequiresConnector(t *testing.T) {
	_, err := NewStore(nil, nil)
	assert.Error(t, err)
}

func mustColumn(t *testing.T, tbl *table.Table, name string) *table.Column {
	t.Helper()
	col, err := tbl.Column(name)
	require.NoError(t, err)
	return col
}
