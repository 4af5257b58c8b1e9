package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tcua/price-index-service/internal/models"
)

// ErrDuplicateObservation reports a second price for the same
// (date, product_id) key. The first recorded value is kept; the condition is
// non-fatal and only feeds quality accounting.
var ErrDuplicateObservation = errors.New("duplicate price observation")

// RecordObservation appends one price observation. First value wins: a
// conflicting insert leaves the existing row untouched and returns
// ErrDuplicateObservation.
func (db *DB) RecordObservation(o *models.PriceObservation) error {
	query := `
		INSERT INTO price_observations (date, product_id, price, source, raw_info, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date, product_id) DO NOTHING
		RETURNING observation_id
	`
	err := db.conn.QueryRow(query,
		o.Date, o.ProductID, o.Price, o.Source, o.RawInfo, time.Now(),
	).Scan(&o.ID)

	// DO NOTHING suppresses the RETURNING row on conflict.
	if err == sql.ErrNoRows {
		return ErrDuplicateObservation
	}
	if err != nil {
		return fmt.Errorf("failed to record observation: %w", err)
	}
	return nil
}

// GetObservation retrieves the observation for a (date, product) key.
func (db *DB) GetObservation(date time.Time, productID int) (*models.PriceObservation, error) {
	query := `
		SELECT observation_id, date, product_id, price, source, raw_info, created_at
		FROM price_observations
		WHERE date = $1 AND product_id = $2
	`
	var o models.PriceObservation
	err := db.conn.QueryRow(query, date, productID).Scan(
		&o.ID, &o.Date, &o.ProductID, &o.Price, &o.Source, &o.RawInfo, &o.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get observation: %w", err)
	}
	return &o, nil
}

// GetObservationsByProduct returns a product's price history, newest first.
func (db *DB) GetObservationsByProduct(productID, limit int) ([]*models.PriceObservation, error) {
	query := `
		SELECT observation_id, date, product_id, price, source, raw_info, created_at
		FROM price_observations
		WHERE product_id = $1
		ORDER BY date DESC
		LIMIT $2
	`
	rows, err := db.conn.Query(query, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get observations: %w", err)
	}
	defer rows.Close()

	var observations []*models.PriceObservation
	for rows.Next() {
		var o models.PriceObservation
		if err := rows.Scan(&o.ID, &o.Date, &o.ProductID, &o.Price, &o.Source, &o.RawInfo, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		observations = append(observations, &o)
	}
	return observations, rows.Err()
}

// GroupPrices holds one day's observed prices for a (category, generation)
// group, the unit the aggregator consumes.
type GroupPrices struct {
	Category   string
	Generation string
	Prices     []decimal.Decimal
}

// GetPricesByGroup returns all observed prices for a date, grouped by the
// owning product's (category, generation). Ordering is fixed so downstream
// aggregation is reproducible.
func (db *DB) GetPricesByGroup(date time.Time) ([]*GroupPrices, error) {
	query := `
		SELECT p.category, p.generation, o.price
		FROM price_observations o
		JOIN products p ON o.product_id = p.product_id
		WHERE o.date = $1
		ORDER BY p.category, p.generation, o.price, o.product_id
	`
	rows, err := db.conn.Query(query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get prices by group: %w", err)
	}
	defer rows.Close()

	var groups []*GroupPrices
	var current *GroupPrices
	for rows.Next() {
		var category, generation string
		var price decimal.Decimal
		if err := rows.Scan(&category, &generation, &price); err != nil {
			return nil, fmt.Errorf("failed to scan group price: %w", err)
		}

		if current == nil || current.Category != category || current.Generation != generation {
			current = &GroupPrices{Category: category, Generation: generation}
			groups = append(groups, current)
		}
		current.Prices = append(current.Prices, price)
	}
	return groups, rows.Err()
}
