package dto

type ItemFilters struct {
	SearchQuery string // substring match on name or sku
	SortBy      string // name | sku | price | quantity
	SortOrder   string // asc | desc
}
