package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcua/price-index-service/internal/models"
)

func TestQualityLogRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	t.Run("InsertQualityLog stores a run record", func(t *testing.T) {
		testDB.TruncateAll(t)

		q := &models.QualityLogEntry{
			Date:              date,
			RecordsFetched:    1200,
			RecordsClassified: 340,
			SuccessRate:       decimal.NewFromFloat(0.2833),
		}
		require.NoError(t, testDB.InsertQualityLog(q))
		assert.NotZero(t, q.ID)

		retrieved, err := testDB.GetQualityLogByDate(date)
		require.NoError(t, err)
		assert.Equal(t, 1200, retrieved.RecordsFetched)
		assert.Equal(t, 340, retrieved.RecordsClassified)
		assert.True(t, decimal.NewFromFloat(0.2833).Equal(retrieved.SuccessRate))
	})

	t.Run("rerun for the same date replaces the record", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.InsertQualityLog(&models.QualityLogEntry{
			Date: date, RecordsFetched: 100, RecordsClassified: 10,
			SuccessRate: decimal.NewFromFloat(0.1),
		}))
		require.NoError(t, testDB.InsertQualityLog(&models.QualityLogEntry{
			Date: date, RecordsFetched: 120, RecordsClassified: 40,
			SuccessRate: decimal.NewFromFloat(0.3333),
		}))

		entries, err := testDB.GetQualityLog(10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 120, entries[0].RecordsFetched)
	})

	t.Run("GetQualityLog returns newest first", func(t *testing.T) {
		testDB.TruncateAll(t)

		for i := 0; i < 3; i++ {
			require.NoError(t, testDB.InsertQualityLog(&models.QualityLogEntry{
				Date: date.AddDate(0, 0, -i), RecordsFetched: 100 + i, RecordsClassified: 50,
				SuccessRate: decimal.NewFromFloat(0.5),
			}))
		}

		entries, err := testDB.GetQualityLog(2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.True(t, entries[0].Date.After(entries[1].Date))
	})
}
