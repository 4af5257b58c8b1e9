package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyIndexEntry is the per-day aggregate for one (category, generation)
// group. It is a materialized view over price_observations and is always
// recomputable from them; it is never the source of truth.
//
// StdPrice uses the sample (n-1) standard deviation. Volatility is the
// coefficient of variation in percent: std / avg * 100.
type DailyIndexEntry struct {
	ID           int             `json:"id"`
	Date         time.Time       `json:"date"`
	Category     string          `json:"category"`
	Generation   string          `json:"generation"`
	AvgPrice     decimal.Decimal `json:"avg_price"`
	MinPrice     decimal.Decimal `json:"min_price"`
	MaxPrice     decimal.Decimal `json:"max_price"`
	MedianPrice  decimal.Decimal `json:"median_price"`
	StdPrice     decimal.Decimal `json:"std_price"`
	ProductCount int             `json:"product_count"`
	Volatility   decimal.Decimal `json:"volatility"`
	CreatedAt    time.Time       `json:"created_at"`
}
