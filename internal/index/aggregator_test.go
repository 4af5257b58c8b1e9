package index

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcua/price-index-service/internal/models"
)

func prices(vals ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

func TestCompute(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	t.Run("three observations", func(t *testing.T) {
		entry := Compute(date, models.CategoryGPU, "NVIDIA_RTX_5090", prices(90000, 92000, 94000))
		require.NotNil(t, entry)

		assert.Equal(t, "92000", entry.AvgPrice.String())
		assert.Equal(t, "90000", entry.MinPrice.String())
		assert.Equal(t, "94000", entry.MaxPrice.String())
		assert.Equal(t, "92000", entry.MedianPrice.String())
		assert.Equal(t, "2000", entry.StdPrice.String())
		assert.Equal(t, "2.17", entry.Volatility.String())
		assert.Equal(t, 3, entry.ProductCount)
	})

	t.Run("even count averages the middle values", func(t *testing.T) {
		entry := Compute(date, models.CategoryRAM, "DDR5", prices(3000, 3200, 3600, 4000))
		require.NotNil(t, entry)
		assert.Equal(t, "3400", entry.MedianPrice.String())
	})

	t.Run("single observation has zero spread", func(t *testing.T) {
		entry := Compute(date, models.CategoryGPU, "NVIDIA_RTX_5080", prices(50000))
		require.NotNil(t, entry)

		assert.Equal(t, 1, entry.ProductCount)
		assert.Equal(t, "50000", entry.AvgPrice.String())
		assert.Equal(t, "50000", entry.MinPrice.String())
		assert.Equal(t, "50000", entry.MaxPrice.String())
		assert.Equal(t, "50000", entry.MedianPrice.String())
		assert.Equal(t, "0", entry.StdPrice.String())
		assert.Equal(t, "0", entry.Volatility.String())
	})

	t.Run("empty group produces no entry", func(t *testing.T) {
		assert.Nil(t, Compute(date, models.CategoryGPU, "NVIDIA_RTX_5060", nil))
	})

	t.Run("idempotent over the same observation set", func(t *testing.T) {
		in := prices(18990, 21500, 19990, 24900, 20500)
		first := Compute(date, models.CategoryGPU, "NVIDIA_RTX_5070", in)
		second := Compute(date, models.CategoryGPU, "NVIDIA_RTX_5070", in)
		assert.Equal(t, first, second)
	})

	t.Run("input order does not matter", func(t *testing.T) {
		a := Compute(date, models.CategoryRAM, "DDR4", prices(1500, 1800, 2100))
		b := Compute(date, models.CategoryRAM, "DDR4", prices(2100, 1500, 1800))
		assert.Equal(t, a, b)
	})

	t.Run("does not mutate its input", func(t *testing.T) {
		in := prices(3, 1, 2)
		Compute(date, models.CategoryRAM, "DDR4", in)
		assert.Equal(t, "3", in[0].String())
	})
}
