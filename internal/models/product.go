package models

import "time"

// Product is a stable identity for a physical product observed across runs.
// Identity is keyed on (category, generation, normalized_name); the display
// name keeps whatever the retailer printed on the first observation.
// Products are never deleted; is_active flips to false when a product has
// not been seen for a while.
type Product struct {
	ID             int       `json:"id"`
	Category       string    `json:"category"`
	Generation     string    `json:"generation"`
	ProductName    string    `json:"product_name"`
	NormalizedName string    `json:"normalized_name"`
	Brand          string    `json:"brand,omitempty"`
	Source         string    `json:"source,omitempty"`
	FirstSeen      time.Time `json:"first_seen"`
	LastSeen       time.Time `json:"last_seen"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}
