package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceChange describes one product whose price moved between the previous
// observed date and the summary date.
type PriceChange struct {
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	OldPrice    decimal.Decimal `json:"old_price"`
	NewPrice    decimal.Decimal `json:"new_price"`
	ChangePct   decimal.Decimal `json:"change_pct"`
}

// NewProduct is a product first seen on the summary date.
type NewProduct struct {
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
}

// DiscontinuedProduct was observed on the previous date but not on the
// summary date.
type DiscontinuedProduct struct {
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	LastPrice   decimal.Decimal `json:"last_price"`
}

// ChangeSummary is the day-over-day market movement report.
type ChangeSummary struct {
	Date           time.Time             `json:"date"`
	TotalProducts  int                   `json:"total_products"`
	NewProducts    []NewProduct          `json:"new_products"`
	PriceIncreases []PriceChange         `json:"price_increases"`
	PriceDecreases []PriceChange         `json:"price_decreases"`
	Discontinued   []DiscontinuedProduct `json:"discontinued"`
}
