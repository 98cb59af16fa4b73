package inventory

import (
	"context"

	"github.com/fekuna/cashierpro-core/internal/inventory/dto"
	"github.com/fekuna/cashierpro-core/internal/model"
)

type UseCase interface {
	// WriteStockChange is the only path by which an item's quantity changes:
	// it upserts the item and appends the matching mutation-log delta
	// atomically. Name/price/SKU corrections without a quantity change flow
	// through the same call and produce no log row.
	WriteStockChange(ctx context.Context, input *dto.StockChangeInput) (*model.Item, error)

	// AddStock applies a relative quantity change (restock or manual
	// correction) on top of the current stock level.
	AddStock(ctx context.Context, input *dto.AddStockInput) (*model.Item, error)

	GetItemBySKU(ctx context.Context, sku string) (*model.Item, error)
	ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.Item, error)
	RemoveItem(ctx context.Context, id int64) error
}
