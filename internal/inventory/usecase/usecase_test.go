package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fekuna/cashierpro-core/internal/database"
	"github.com/fekuna/cashierpro-core/internal/inventory/dto"
	"github.com/fekuna/cashierpro-core/internal/inventory/repository"
	"github.com/fekuna/cashierpro-core/internal/model"
)

func newTestUseCase(t *testing.T) (*inventoryUseCase, *sqlx.DB) {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.InitSchema(context.Background(), db))

	uc := &inventoryUseCase{
		repo:   repository.NewSQLiteRepository(db),
		logger: zap.NewNop(),
		now:    func() time.Time { return time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC) },
	}
	return uc, db
}

func countMutations(t *testing.T, db *sqlx.DB, sku string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM mutation_log WHERE sku = ?`, sku))
	return n
}

func sumDeltas(t *testing.T, db *sqlx.DB, sku string) int64 {
	t.Helper()
	var total int64
	require.NoError(t, db.Get(&total, `SELECT COALESCE(SUM(delta), 0) FROM mutation_log WHERE sku = ?`, sku))
	return total
}

func TestWriteStockChange_CreatesItemWithInitialDelta(t *testing.T) {
	uc, db := newTestUseCase(t)
	ctx := context.Background()

	item, err := uc.WriteStockChange(ctx, &dto.StockChangeInput{
		Name: "Widget", SKU: "A1", UnitPrice: 1000, NewQuantity: 5,
	})
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.EqualValues(t, 5, item.Quantity)

	got, err := uc.GetItemBySKU(ctx, "A1")
	require.NoError(t, err)
	assert.EqualValues(t, 5, got.Quantity)

	assert.EqualValues(t, 1, countMutations(t, db, "A1"))
	assert.EqualValues(t, 5, sumDeltas(t, db, "A1"))
}

func TestWriteStockChange_QuantityEqualsDeltaSum(t *testing.T) {
	uc, db := newTestUseCase(t)
	ctx := context.Background()

	for _, q := range []int64{5, 8, 2, 2, 10} {
		_, err := uc.WriteStockChange(ctx, &dto.StockChangeInput{
			Name: "Widget", SKU: "A1", UnitPrice: 1000, NewQuantity: q,
		})
		require.NoError(t, err)
	}

	item, err := uc.GetItemBySKU(ctx, "A1")
	require.NoError(t, err)
	assert.EqualValues(t, 10, item.Quantity)
	assert.Equal(t, item.Quantity, sumDeltas(t, db, "A1"))
	// 5 -> 8 -> 2 -> (no-op) -> 10
	assert.EqualValues(t, 4, countMutations(t, db, "A1"))
}

func TestWriteStockChange_NoOpWritesNoLogRow(t *testing.T) {
	uc, db := newTestUseCase(t)
	ctx := context.Background()

	_, err := uc.WriteStockChange(ctx, &dto.StockChangeInput{
		Name: "Widget", SKU: "A1", UnitPrice: 1000, NewQuantity: 5,
	})
	require.NoError(t, err)

	// Price correction without a quantity change: same single update path,
	// zero new mutation rows.
	item, err := uc.GetItemBySKU(ctx, "A1")
	require.NoError(t, err)
	_, err = uc.WriteStockChange(ctx, &dto.StockChangeInput{
		ID: &item.ID, Name: "Widget Pro", SKU: "A1", UnitPrice: 1200, NewQuantity: 5,
	})
	require.NoError(t, err)

	assert.EqualValues(t, 1, countMutations(t, db, "A1"))

	got, err := uc.GetItemBySKU(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Widget Pro", got.Name)
	assert.EqualValues(t, 1200, got.UnitPrice)
}

func TestWriteStockChange_Validation(t *testing.T) {
	uc, db := newTestUseCase(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input *dto.StockChangeInput
	}{
		{"missing name", &dto.StockChangeInput{SKU: "A1", UnitPrice: 1000, NewQuantity: 5}},
		{"missing sku", &dto.StockChangeInput{Name: "Widget", UnitPrice: 1000, NewQuantity: 5}},
		{"negative price", &dto.StockChangeInput{Name: "Widget", SKU: "A1", UnitPrice: -1, NewQuantity: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.WriteStockChange(ctx, tc.input)
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}

	var items int64
	require.NoError(t, db.Get(&items, `SELECT COUNT(*) FROM items`))
	assert.Zero(t, items)
	assert.Zero(t, countMutations(t, db, "A1"))
}

func TestWriteStockChange_UnknownID(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	id := int64(42)
	_, err := uc.WriteStockChange(ctx, &dto.StockChangeInput{
		ID: &id, Name: "Widget", SKU: "A1", UnitPrice: 1000, NewQuantity: 5,
	})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestAddStock_RelativeChange(t *testing.T) {
	uc, db := newTestUseCase(t)
	ctx := context.Background()

	_, err := uc.AddStock(ctx, &dto.AddStockInput{Name: "Widget", SKU: "A1", UnitPrice: 1000, Quantity: 5})
	require.NoError(t, err)
	item, err := uc.AddStock(ctx, &dto.AddStockInput{Name: "Widget", SKU: "A1", UnitPrice: 1000, Quantity: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 8, item.Quantity)

	item, err = uc.AddStock(ctx, &dto.AddStockInput{Name: "Widget", SKU: "A1", UnitPrice: 1000, Quantity: -2})
	require.NoError(t, err)
	assert.EqualValues(t, 6, item.Quantity)

	assert.Equal(t, item.Quantity, sumDeltas(t, db, "A1"))
	assert.EqualValues(t, 3, countMutations(t, db, "A1"))

	_, err = uc.AddStock(ctx, &dto.AddStockInput{Name: "Widget", SKU: "A1", UnitPrice: 1000, Quantity: 0})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRemoveItem_HistorySurvives(t *testing.T) {
	uc, db := newTestUseCase(t)
	ctx := context.Background()

	item, err := uc.WriteStockChange(ctx, &dto.StockChangeInput{
		Name: "Widget", SKU: "A1", UnitPrice: 1000, NewQuantity: 5,
	})
	require.NoError(t, err)

	require.NoError(t, uc.RemoveItem(ctx, item.ID))

	_, err = uc.GetItemBySKU(ctx, "A1")
	require.ErrorIs(t, err, model.ErrNotFound)

	// No cascading delete of historical log entries.
	assert.EqualValues(t, 1, countMutations(t, db, "A1"))

	err = uc.RemoveItem(ctx, item.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestListItems_FilterAndSort(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	seed := []struct {
		name  string
		sku   string
		price int64
		qty   int64
	}{
		{"Widget", "A1", 1000, 5},
		{"Gadget", "B2", 500, 9},
		{"Widget Mini", "C3", 250, 2},
	}
	for _, s := range seed {
		_, err := uc.WriteStockChange(ctx, &dto.StockChangeInput{
			Name: s.name, SKU: s.sku, UnitPrice: s.price, NewQuantity: s.qty,
		})
		require.NoError(t, err)
	}

	items, err := uc.ListItems(ctx, &dto.ItemFilters{SearchQuery: "Widget"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, err = uc.ListItems(ctx, &dto.ItemFilters{SearchQuery: "B2"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Gadget", items[0].Name)

	items, err = uc.ListItems(ctx, &dto.ItemFilters{SortBy: "price", SortOrder: "desc"})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "A1", items[0].SKU)
	assert.Equal(t, "C3", items[2].SKU)

	// Default ordering is by name ascending.
	items, err = uc.ListItems(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Gadget", items[0].Name)
}
