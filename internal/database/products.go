package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tcua/price-index-service/internal/models"
)

// UpsertProduct resolves a product identity. The first observation of a
// (category, generation, normalized_name) key inserts a new product; later
// observations refresh last_seen and reactivate it. The product's ID and
// first_seen are populated either way, so the catalog can never hand out two
// ids for the same key.
func (db *DB) UpsertProduct(p *models.Product) error {
	query := `
		INSERT INTO products (
			category, generation, product_name, normalized_name, brand, source,
			first_seen, last_seen, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9)
		ON CONFLICT (category, generation, normalized_name) DO UPDATE SET
			last_seen = EXCLUDED.last_seen,
			is_active = TRUE,
			source = EXCLUDED.source
		RETURNING product_id, first_seen
	`
	err := db.conn.QueryRow(query,
		p.Category, p.Generation, p.ProductName, p.NormalizedName, p.Brand, p.Source,
		p.FirstSeen, p.LastSeen, time.Now(),
	).Scan(&p.ID, &p.FirstSeen)

	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	p.IsActive = true
	return nil
}

// GetProductByID retrieves a product by its id.
func (db *DB) GetProductByID(id int) (*models.Product, error) {
	query := `
		SELECT product_id, category, generation, product_name, normalized_name,
		       brand, source, first_seen, last_seen, is_active, created_at
		FROM products
		WHERE product_id = $1
	`
	p, err := scanProduct(db.conn.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// GetProductByKey retrieves a product by its identity key.
func (db *DB) GetProductByKey(category, generation, normalizedName string) (*models.Product, error) {
	query := `
		SELECT product_id, category, generation, product_name, normalized_name,
		       brand, source, first_seen, last_seen, is_active, created_at
		FROM products
		WHERE category = $1 AND generation = $2 AND normalized_name = $3
	`
	p, err := scanProduct(db.conn.QueryRow(query, category, generation, normalizedName))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found: %s/%s/%s", category, generation, normalizedName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// ListProducts returns products, optionally filtered by category and active
// state, ordered by category, generation and name.
func (db *DB) ListProducts(category string, activeOnly bool) ([]*models.Product, error) {
	query := `
		SELECT product_id, category, generation, product_name, normalized_name,
		       brand, source, first_seen, last_seen, is_active, created_at
		FROM products
		WHERE ($1 = '' OR category = $1)
		  AND (NOT $2 OR is_active)
		ORDER BY category, generation, product_name
	`
	rows, err := db.conn.Query(query, category, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// MarkInactiveNotSeenSince soft-deactivates products whose last_seen is
// before the cutoff. Products are never physically deleted.
func (db *DB) MarkInactiveNotSeenSince(cutoff time.Time) (int64, error) {
	query := `UPDATE products SET is_active = FALSE WHERE is_active AND last_seen < $1`
	result, err := db.conn.Exec(query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to mark products inactive: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var brand, source sql.NullString

	err := row.Scan(
		&p.ID, &p.Category, &p.Generation, &p.ProductName, &p.NormalizedName,
		&brand, &source, &p.FirstSeen, &p.LastSeen, &p.IsActive, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if brand.Valid {
		p.Brand = brand.String
	}
	if source.Valid {
		p.Source = source.String
	}
	return &p, nil
}
