package domain

// PriceList is a named set of product prices selectable as the pricing
// context for a cart. Immutable once fetched from the catalog service.
type PriceList struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is one catalog entry resolved for a (price list, currency) pair.
// Prices are in minor currency units (cents).
type Product struct {
	ProductID      string   `json:"product_id"`
	Name           string   `json:"name"`
	ProductCode    string   `json:"product_code"`
	Brand          string   `json:"brand,omitempty"`
	Family         string   `json:"family,omitempty"`
	UnitPrice      int64    `json:"unit_price"`
	AvailableUnits int      `json:"available_units"`
	ImageURLs      []string `json:"image_urls"`
}
