package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceObservation is one recorded price for a product on a given date.
// At most one row exists per (date, product_id); the first value recorded
// during a run wins and the row is immutable afterwards.
type PriceObservation struct {
	ID        int             `json:"id"`
	Date      time.Time       `json:"date"`
	ProductID int             `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Source    string          `json:"source,omitempty"`
	RawInfo   string          `json:"raw_info,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
