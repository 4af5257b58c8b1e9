package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tcua/price-index-service/internal/models"
)

// RunStats accumulates per-listing conditions over one run. None of them is
// fatal on its own; they are summarized into a single quality log entry once
// the run's writes are durable. Dropped counts listings that classified but
// whose name normalized to nothing, so no identity could be resolved; they
// stay in RecordsClassified since classification itself succeeded.
type RunStats struct {
	RecordsFetched    int
	RecordsClassified int
	Unclassified      int
	Dropped           int
	Duplicates        int
}

// QualityEntry converts the counters into the persisted quality record.
// The success rate is classified/fetched rounded to 4 places, and 0 for an
// empty fetch rather than a division failure.
func (s RunStats) QualityEntry(date time.Time) *models.QualityLogEntry {
	rate := decimal.Zero
	if s.RecordsFetched > 0 {
		rate = decimal.NewFromInt(int64(s.RecordsClassified)).
			Div(decimal.NewFromInt(int64(s.RecordsFetched))).
			Round(4)
	}
	return &models.QualityLogEntry{
		Date:              date,
		RecordsFetched:    s.RecordsFetched,
		RecordsClassified: s.RecordsClassified,
		SuccessRate:       rate,
	}
}
