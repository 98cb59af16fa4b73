package inventory

import (
	"context"

	"github.com/fekuna/cashierpro-core/internal/inventory/dto"
	"github.com/fekuna/cashierpro-core/internal/model"
)

type Repository interface {
	// Lookup
	FindBySKU(ctx context.Context, sku string) (*model.Item, error)
	FindByID(ctx context.Context, id int64) (*model.Item, error)
	FindAll(ctx context.Context, filters *dto.ItemFilters) ([]model.Item, error)

	// Hard delete; never touches the ledgers.
	Delete(ctx context.Context, id int64) error

	// Transaction support: item upsert and mutation insert as one unit.
	// entry may be nil when the quantity did not change.
	UpsertWithMutation(ctx context.Context, item *model.Item, entry *model.MutationLogEntry) error
}
