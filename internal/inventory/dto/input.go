package dto

type StockChangeInput struct {
	ID          *int64 // nil: resolve by SKU, creating the item if absent
	Name        string
	SKU         string
	UnitPrice   int64
	NewQuantity int64 // absolute target quantity
}

type AddStockInput struct {
	Name      string
	SKU       string
	UnitPrice int64
	Quantity  int64 // signed relative change, must be non-zero
}
