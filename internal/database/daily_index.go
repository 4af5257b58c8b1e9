package database

import (
	"fmt"
	"time"

	"github.com/tcua/price-index-service/internal/index"
	"github.com/tcua/price-index-service/internal/models"
)

// UpsertDailyIndexEntry stores one aggregated entry, replacing any previous
// value for the (date, category, generation) key. The table is a
// materialized view over price_observations and is always safe to overwrite.
func (db *DB) UpsertDailyIndexEntry(e *models.DailyIndexEntry) error {
	query := `
		INSERT INTO daily_index (
			date, category, generation, avg_price, min_price, max_price,
			median_price, std_price, product_count, volatility, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (date, category, generation) DO UPDATE SET
			avg_price = EXCLUDED.avg_price,
			min_price = EXCLUDED.min_price,
			max_price = EXCLUDED.max_price,
			median_price = EXCLUDED.median_price,
			std_price = EXCLUDED.std_price,
			product_count = EXCLUDED.product_count,
			volatility = EXCLUDED.volatility
		RETURNING index_id
	`
	err := db.conn.QueryRow(query,
		e.Date, e.Category, e.Generation, e.AvgPrice, e.MinPrice, e.MaxPrice,
		e.MedianPrice, e.StdPrice, e.ProductCount, e.Volatility, time.Now(),
	).Scan(&e.ID)

	if err != nil {
		return fmt.Errorf("failed to upsert daily index entry: %w", err)
	}
	return nil
}

// RebuildDay recomputes every index entry for a date from the observation
// log. Existing rows for the date are dropped first so groups that lost all
// observations disappear rather than go stale. Used after each run and as
// the repair path.
func (db *DB) RebuildDay(date time.Time) ([]*models.DailyIndexEntry, error) {
	groups, err := db.GetPricesByGroup(date)
	if err != nil {
		return nil, err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM daily_index WHERE date = $1`, date); err != nil {
		return nil, fmt.Errorf("failed to clear daily index for %s: %w", date.Format("2006-01-02"), err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO daily_index (
			date, category, generation, avg_price, min_price, max_price,
			median_price, std_price, product_count, volatility, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	var entries []*models.DailyIndexEntry
	for _, g := range groups {
		e := index.Compute(date, g.Category, g.Generation, g.Prices)
		if e == nil {
			continue
		}
		_, err := stmt.Exec(
			e.Date, e.Category, e.Generation, e.AvgPrice, e.MinPrice, e.MaxPrice,
			e.MedianPrice, e.StdPrice, e.ProductCount, e.Volatility, now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert index entry for %s/%s: %w", e.Category, e.Generation, err)
		}
		entries = append(entries, e)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entries, nil
}

// GetIndexByDate returns all index entries for a date.
func (db *DB) GetIndexByDate(date time.Time) ([]*models.DailyIndexEntry, error) {
	query := `
		SELECT index_id, date, category, generation, avg_price, min_price, max_price,
		       median_price, std_price, product_count, volatility, created_at
		FROM daily_index
		WHERE date = $1
		ORDER BY category, generation
	`
	return db.queryIndexEntries(query, date)
}

// GetLatestIndex returns the entries for the most recent aggregated date.
func (db *DB) GetLatestIndex() ([]*models.DailyIndexEntry, error) {
	query := `
		SELECT index_id, date, category, generation, avg_price, min_price, max_price,
		       median_price, std_price, product_count, volatility, created_at
		FROM daily_index
		WHERE date = (SELECT MAX(date) FROM daily_index)
		ORDER BY category, generation
	`
	return db.queryIndexEntries(query)
}

// GetIndexHistory returns up to `days` most recent entries for one
// (category, generation) group, newest first.
func (db *DB) GetIndexHistory(category, generation string, days int) ([]*models.DailyIndexEntry, error) {
	query := `
		SELECT index_id, date, category, generation, avg_price, min_price, max_price,
		       median_price, std_price, product_count, volatility, created_at
		FROM daily_index
		WHERE category = $1 AND generation = $2
		ORDER BY date DESC
		LIMIT $3
	`
	return db.queryIndexEntries(query, category, generation, days)
}

func (db *DB) queryIndexEntries(query string, args ...interface{}) ([]*models.DailyIndexEntry, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get index entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.DailyIndexEntry
	for rows.Next() {
		var e models.DailyIndexEntry
		err := rows.Scan(
			&e.ID, &e.Date, &e.Category, &e.Generation, &e.AvgPrice, &e.MinPrice, &e.MaxPrice,
			&e.MedianPrice, &e.StdPrice, &e.ProductCount, &e.Volatility, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan index entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
