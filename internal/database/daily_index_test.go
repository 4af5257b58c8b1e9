package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcua/price-index-service/internal/models"
)

func TestDailyIndexRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	seedObservations := func(t *testing.T, prices map[string]int64) {
		t.Helper()
		for name, price := range prices {
			p := seedProduct(t, testDB, models.CategoryGPU, "NVIDIA_RTX_5090", name, "norm "+name, date)
			require.NoError(t, testDB.RecordObservation(&models.PriceObservation{
				Date: date, ProductID: p.ID, Price: decimal.NewFromInt(price),
			}))
		}
	}

	t.Run("UpsertDailyIndexEntry replaces on conflict", func(t *testing.T) {
		testDB.TruncateAll(t)

		e := &models.DailyIndexEntry{
			Date:         date,
			Category:     models.CategoryGPU,
			Generation:   "NVIDIA_RTX_5090",
			AvgPrice:     decimal.NewFromInt(92000),
			MinPrice:     decimal.NewFromInt(90000),
			MaxPrice:     decimal.NewFromInt(94000),
			MedianPrice:  decimal.NewFromInt(92000),
			StdPrice:     decimal.NewFromInt(2000),
			ProductCount: 3,
			Volatility:   decimal.NewFromFloat(2.17),
		}
		require.NoError(t, testDB.UpsertDailyIndexEntry(e))
		firstID := e.ID

		e.AvgPrice = decimal.NewFromInt(91000)
		require.NoError(t, testDB.UpsertDailyIndexEntry(e))
		assert.Equal(t, firstID, e.ID, "conflict should update in place")

		entries, err := testDB.GetIndexByDate(date)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, decimal.NewFromInt(91000).Equal(entries[0].AvgPrice))
	})

	t.Run("RebuildDay derives entries from observations", func(t *testing.T) {
		testDB.TruncateAll(t)
		seedObservations(t, map[string]int64{"A": 90000, "B": 92000, "C": 94000})

		entries, err := testDB.RebuildDay(date)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		e := entries[0]
		assert.Equal(t, 3, e.ProductCount)
		assert.Equal(t, "92000", e.AvgPrice.String())
		assert.Equal(t, "2000", e.StdPrice.String())
		assert.Equal(t, "2.17", e.Volatility.String())

		stored, err := testDB.GetIndexByDate(date)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.True(t, e.AvgPrice.Equal(stored[0].AvgPrice))
	})

	t.Run("RebuildDay is idempotent", func(t *testing.T) {
		testDB.TruncateAll(t)
		seedObservations(t, map[string]int64{"A": 18990, "B": 21500, "C": 19990})

		first, err := testDB.RebuildDay(date)
		require.NoError(t, err)
		second, err := testDB.RebuildDay(date)
		require.NoError(t, err)

		require.Len(t, first, 1)
		require.Len(t, second, 1)
		assert.Equal(t, first[0].AvgPrice.String(), second[0].AvgPrice.String())
		assert.Equal(t, first[0].StdPrice.String(), second[0].StdPrice.String())
		assert.Equal(t, first[0].Volatility.String(), second[0].Volatility.String())

		stored, err := testDB.GetIndexByDate(date)
		require.NoError(t, err)
		assert.Len(t, stored, 1, "rerun must not leave extra rows")
	})

	t.Run("RebuildDay drops entries for emptied groups", func(t *testing.T) {
		testDB.TruncateAll(t)
		seedObservations(t, map[string]int64{"A": 90000})

		_, err := testDB.RebuildDay(date)
		require.NoError(t, err)

		_, err = testDB.GetRawConn().Exec(`DELETE FROM price_observations WHERE date = $1`, date)
		require.NoError(t, err)

		entries, err := testDB.RebuildDay(date)
		require.NoError(t, err)
		assert.Empty(t, entries)

		stored, err := testDB.GetIndexByDate(date)
		require.NoError(t, err)
		assert.Empty(t, stored, "stale entry must not survive a rebuild")
	})

	t.Run("GetLatestIndex returns the newest date only", func(t *testing.T) {
		testDB.TruncateAll(t)

		older := &models.DailyIndexEntry{
			Date: date.AddDate(0, 0, -1), Category: models.CategoryRAM, Generation: "DDR5",
			AvgPrice: decimal.NewFromInt(3200), MinPrice: decimal.NewFromInt(3000),
			MaxPrice: decimal.NewFromInt(3400), MedianPrice: decimal.NewFromInt(3200),
			StdPrice: decimal.NewFromInt(200), ProductCount: 2, Volatility: decimal.NewFromFloat(6.25),
		}
		require.NoError(t, testDB.UpsertDailyIndexEntry(older))

		newer := &models.DailyIndexEntry{
			Date: date, Category: models.CategoryRAM, Generation: "DDR5",
			AvgPrice: decimal.NewFromInt(3300), MinPrice: decimal.NewFromInt(3100),
			MaxPrice: decimal.NewFromInt(3500), MedianPrice: decimal.NewFromInt(3300),
			StdPrice: decimal.NewFromInt(200), ProductCount: 2, Volatility: decimal.NewFromFloat(6.06),
		}
		require.NoError(t, testDB.UpsertDailyIndexEntry(newer))

		latest, err := testDB.GetLatestIndex()
		require.NoError(t, err)
		require.Len(t, latest, 1)
		assert.True(t, latest[0].Date.Equal(date))
	})

	t.Run("GetIndexHistory returns newest first with limit", func(t *testing.T) {
		testDB.TruncateAll(t)

		for i := 0; i < 5; i++ {
			e := &models.DailyIndexEntry{
				Date: date.AddDate(0, 0, -i), Category: models.CategoryRAM, Generation: "DDR4",
				AvgPrice: decimal.NewFromInt(1500), MinPrice: decimal.NewFromInt(1400),
				MaxPrice: decimal.NewFromInt(1600), MedianPrice: decimal.NewFromInt(1500),
				StdPrice: decimal.NewFromInt(100), ProductCount: 3, Volatility: decimal.NewFromFloat(6.67),
			}
			require.NoError(t, testDB.UpsertDailyIndexEntry(e))
		}

		history, err := testDB.GetIndexHistory(models.CategoryRAM, "DDR4", 3)
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.True(t, history[0].Date.After(history[1].Date))
	})
}
