package database

import (
	"fmt"
	"time"

	"github.com/tcua/price-index-service/internal/models"
)

// changeThreshold filters out sub-0.5% price noise in the day-over-day
// summary.
const changeThreshold = 0.005

// GetChangeSummary builds the day-over-day movement report for a date:
// products first seen that day, prices that rose or fell more than 0.5%
// against the previous observed date, and products that disappeared.
func (db *DB) GetChangeSummary(date time.Time) (*models.ChangeSummary, error) {
	summary := &models.ChangeSummary{Date: date}

	if err := db.loadNewProducts(date, summary); err != nil {
		return nil, err
	}
	if err := db.loadPriceChanges(date, summary); err != nil {
		return nil, err
	}
	if err := db.loadDiscontinued(date, summary); err != nil {
		return nil, err
	}

	query := `SELECT COUNT(*) FROM price_observations WHERE date = $1`
	if err := db.conn.QueryRow(query, date).Scan(&summary.TotalProducts); err != nil {
		return nil, fmt.Errorf("failed to count observations: %w", err)
	}

	return summary, nil
}

func (db *DB) loadNewProducts(date time.Time, summary *models.ChangeSummary) error {
	query := `
		SELECT p.product_name, p.category, o.price
		FROM products p
		JOIN price_observations o ON p.product_id = o.product_id
		WHERE p.first_seen = $1 AND o.date = $1
		ORDER BY p.category, o.price DESC
	`
	rows, err := db.conn.Query(query, date)
	if err != nil {
		return fmt.Errorf("failed to get new products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n models.NewProduct
		if err := rows.Scan(&n.ProductName, &n.Category, &n.Price); err != nil {
			return fmt.Errorf("failed to scan new product: %w", err)
		}
		summary.NewProducts = append(summary.NewProducts, n)
	}
	return rows.Err()
}

func (db *DB) loadPriceChanges(date time.Time, summary *models.ChangeSummary) error {
	query := `
		WITH today AS (
			SELECT product_id, price FROM price_observations WHERE date = $1
		),
		prev_date AS (
			SELECT MAX(date) AS d FROM price_observations WHERE date < $1
		),
		previous AS (
			SELECT o.product_id, o.price
			FROM price_observations o, prev_date pd
			WHERE o.date = pd.d
		)
		SELECT p.product_name, p.category, prev.price, t.price,
		       ROUND((t.price - prev.price) / prev.price * 100, 2)
		FROM today t
		JOIN previous prev ON t.product_id = prev.product_id
		JOIN products p ON t.product_id = p.product_id
		WHERE prev.price > 0
		  AND ABS(t.price - prev.price) / prev.price > $2
		ORDER BY (t.price - prev.price) / prev.price DESC
	`
	rows, err := db.conn.Query(query, date, changeThreshold)
	if err != nil {
		return fmt.Errorf("failed to get price changes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.PriceChange
		if err := rows.Scan(&c.ProductName, &c.Category, &c.OldPrice, &c.NewPrice, &c.ChangePct); err != nil {
			return fmt.Errorf("failed to scan price change: %w", err)
		}
		if c.ChangePct.IsPositive() {
			summary.PriceIncreases = append(summary.PriceIncreases, c)
		} else {
			summary.PriceDecreases = append(summary.PriceDecreases, c)
		}
	}
	return rows.Err()
}

func (db *DB) loadDiscontinued(date time.Time, summary *models.ChangeSummary) error {
	query := `
		WITH prev_date AS (
			SELECT MAX(date) AS d FROM price_observations WHERE date < $1
		)
		SELECT p.product_name, p.category, o.price
		FROM products p
		JOIN price_observations o ON p.product_id = o.product_id
		JOIN prev_date pd ON o.date = pd.d
		WHERE p.product_id NOT IN (
			SELECT product_id FROM price_observations WHERE date = $1
		)
		ORDER BY p.category, o.price DESC
	`
	rows, err := db.conn.Query(query, date)
	if err != nil {
		return fmt.Errorf("failed to get discontinued products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.DiscontinuedProduct
		if err := rows.Scan(&d.ProductName, &d.Category, &d.LastPrice); err != nil {
			return fmt.Errorf("failed to scan discontinued product: %w", err)
		}
		summary.Discontinued = append(summary.Discontinued, d)
	}
	return rows.Err()
}
