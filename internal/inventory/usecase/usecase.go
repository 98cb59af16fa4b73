package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fekuna/cashierpro-core/internal/inventory"
	"github.com/fekuna/cashierpro-core/internal/inventory/dto"
	"github.com/fekuna/cashierpro-core/internal/model"
)

type inventoryUseCase struct {
	repo   inventory.Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewInventoryUseCase(repo inventory.Repository, log *zap.Logger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

func (uc *inventoryUseCase) WriteStockChange(ctx context.Context, input *dto.StockChangeInput) (*model.Item, error) {
	if input.Name == "" {
		return nil, &model.ValidationError{Field: "name", Reason: "required"}
	}
	if input.SKU == "" {
		return nil, &model.ValidationError{Field: "sku", Reason: "required"}
	}
	if input.UnitPrice < 0 {
		return nil, &model.ValidationError{Field: "unit_price", Reason: "must not be negative"}
	}

	// 1. Resolve the current item: by id for edits, by SKU otherwise.
	var current *model.Item
	var err error
	if input.ID != nil {
		current, err = uc.repo.FindByID(ctx, *input.ID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, fmt.Errorf("item %d: %w", *input.ID, model.ErrNotFound)
		}
	} else {
		current, err = uc.repo.FindBySKU(ctx, input.SKU)
		if err != nil {
			return nil, err
		}
	}

	// 2. Compute the delta against the stored quantity (0 for a new item).
	var currentQuantity int64
	item := &model.Item{
		Name:      input.Name,
		SKU:       input.SKU,
		UnitPrice: input.UnitPrice,
		Quantity:  input.NewQuantity,
	}
	if current != nil {
		currentQuantity = current.Quantity
		item.ID = current.ID
	}
	delta := input.NewQuantity - currentQuantity

	// 3. Upsert and log as one unit. No-op mutations are not recorded.
	var entry *model.MutationLogEntry
	if delta != 0 {
		entry = &model.MutationLogEntry{
			ItemName:  input.Name,
			SKU:       input.SKU,
			Delta:     delta,
			Timestamp: uc.now().UTC(),
			Kind:      model.KindMutation,
		}
	}

	if err := uc.repo.UpsertWithMutation(ctx, item, entry); err != nil {
		return nil, err
	}

	uc.logger.Debug("stock change written",
		zap.String("sku", item.SKU),
		zap.Int64("quantity", item.Quantity),
		zap.Int64("delta", delta),
	)

	return item, nil
}

func (uc *inventoryUseCase) AddStock(ctx context.Context, input *dto.AddStockInput) (*model.Item, error) {
	if input.Quantity == 0 {
		return nil, &model.ValidationError{Field: "quantity", Reason: "must not be zero"}
	}

	change := &dto.StockChangeInput{
		Name:        input.Name,
		SKU:         input.SKU,
		UnitPrice:   input.UnitPrice,
		NewQuantity: input.Quantity,
	}

	existing, err := uc.repo.FindBySKU(ctx, input.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		change.ID = &existing.ID
		change.NewQuantity = existing.Quantity + input.Quantity
	}

	return uc.WriteStockChange(ctx, change)
}

func (uc *inventoryUseCase) GetItemBySKU(ctx context.Context, sku string) (*model.Item, error) {
	item, err := uc.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("sku %q: %w", sku, model.ErrNotFound)
	}
	return item, nil
}

func (uc *inventoryUseCase) ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.Item, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *inventoryUseCase) RemoveItem(ctx context.Context, id int64) error {
	// History survives deletion: ledger rows for this item stay untouched.
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("item removed", zap.Int64("id", id))
	return nil
}
