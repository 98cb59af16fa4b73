package dto

type SaleLineInput struct {
	SKU      string
	Quantity int64
}

type SaleInput struct {
	Lines        []SaleLineInput
	CashReceived int64
	// AllowNegative lets the sale drive stock below zero. Requires explicit
	// user confirmation upstream; never the default.
	AllowNegative bool
}

// PreparedSaleLine is a validated line handed to the repository after the
// usecase resolved the item and checked availability.
type PreparedSaleLine struct {
	SKU          string
	ItemName     string
	QuantitySold int64
}
