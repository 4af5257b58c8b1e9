package pipeline

import (
	"sync"
	"time"

	"github.com/tcua/price-index-service/internal/models"
)

// Catalog is the product identity store the resolver writes through.
// *database.DB satisfies it.
type Catalog interface {
	UpsertProduct(p *models.Product) error
}

type identityKey struct {
	category       string
	generation     string
	normalizedName string
}

// Resolver maps classified listings to stable product ids. Lookups go
// through an in-run cache guarded by a mutex, then fall through to the
// catalog's keyed upsert, so one run can never issue two ids for the same
// (category, generation, normalizedName) key even if resolution is ever
// driven from multiple goroutines.
type Resolver struct {
	catalog Catalog

	mu    sync.Mutex
	cache map[identityKey]int
}

// NewResolver creates a resolver for a single run.
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{
		catalog: catalog,
		cache:   make(map[identityKey]int),
	}
}

// Resolve returns the product id for a classified listing, creating the
// product on first sight and refreshing last_seen otherwise.
func (r *Resolver) Resolve(c models.Classification, displayName, normalizedName, brand, source string, runDate time.Time) (int, error) {
	key := identityKey{c.Category, c.Generation, normalizedName}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.cache[key]; ok {
		return id, nil
	}

	p := &models.Product{
		Category:       c.Category,
		Generation:     c.Generation,
		ProductName:    displayName,
		NormalizedName: normalizedName,
		Brand:          brand,
		Source:         source,
		FirstSeen:      runDate,
		LastSeen:       runDate,
	}
	if err := r.catalog.UpsertProduct(p); err != nil {
		return 0, err
	}

	r.cache[key] = p.ID
	return p.ID, nil
}
