package model

type Item struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	SKU       string `db:"sku" json:"sku"`
	UnitPrice int64  `db:"unit_price" json:"unit_price"` // smallest currency unit
	Quantity  int64  `db:"quantity" json:"quantity"`
}
