package index

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tcua/price-index-service/internal/models"
)

// Compute derives the daily index entry for one (date, category, generation)
// group from its price observations. Returns nil for an empty group: absence
// of an entry, not a zero-filled row.
//
// Conventions, fixed so reruns are byte-identical:
//   - avg, min, max, median, std rounded to 2 decimal places
//   - std is the sample (n-1) standard deviation; 0 when n == 1
//   - volatility = std / avg * 100, rounded to 2 places; 0 when n == 1
//   - median of an even-sized group averages the two middle values
//
// Compute is pure; input order does not matter.
func Compute(date time.Time, category, generation string, prices []decimal.Decimal) *models.DailyIndexEntry {
	n := len(prices)
	if n == 0 {
		return nil
	}

	sorted := make([]decimal.Decimal, n)
	copy(sorted, prices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	sum := decimal.Zero
	for _, p := range sorted {
		sum = sum.Add(p)
	}
	avg := sum.Div(decimal.NewFromInt(int64(n)))

	var median decimal.Decimal
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = sorted[n/2-1].Add(sorted[n/2]).Div(decimal.NewFromInt(2))
	}

	std := sampleStdDev(sorted, avg)
	volatility := decimal.Zero
	if !std.IsZero() && !avg.IsZero() {
		volatility = std.Div(avg).Mul(decimal.NewFromInt(100))
	}

	return &models.DailyIndexEntry{
		Date:         date,
		Category:     category,
		Generation:   generation,
		AvgPrice:     avg.Round(2),
		MinPrice:     sorted[0].Round(2),
		MaxPrice:     sorted[n-1].Round(2),
		MedianPrice:  median.Round(2),
		StdPrice:     std.Round(2),
		ProductCount: n,
		Volatility:   volatility.Round(2),
	}
}

// sampleStdDev computes the n-1 denominator standard deviation. The square
// root runs in float64; the squared deviations stay decimal so the variance
// itself does not accumulate float error.
func sampleStdDev(prices []decimal.Decimal, avg decimal.Decimal) decimal.Decimal {
	n := len(prices)
	if n < 2 {
		return decimal.Zero
	}

	sumSq := decimal.Zero
	for _, p := range prices {
		d := p.Sub(avg)
		sumSq = sumSq.Add(d.Mul(d))
	}
	variance := sumSq.Div(decimal.NewFromInt(int64(n - 1)))

	f, _ := variance.Float64()
	return decimal.NewFromFloat(math.Sqrt(f))
}
