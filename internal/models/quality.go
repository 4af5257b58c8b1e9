package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// QualityLogEntry records, for one run, how many listings were fetched and
// how many of those classified. SuccessRate is classified/fetched, zero when
// nothing was fetched.
type QualityLogEntry struct {
	ID                int             `json:"id"`
	Date              time.Time       `json:"date"`
	RecordsFetched    int             `json:"records_fetched"`
	RecordsClassified int             `json:"records_classified"`
	SuccessRate       decimal.Decimal `json:"success_rate"`
	CreatedAt         time.Time       `json:"created_at"`
}
