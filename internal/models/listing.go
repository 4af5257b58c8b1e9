package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category labels used throughout the taxonomy and catalog.
const (
	CategoryGPU = "GPU"
	CategoryRAM = "RAM"
)

// RawListing is a single retailer listing as delivered by the fetch/parse
// collaborator. It is consumed once per run and never persisted.
type RawListing struct {
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	RawInfo string          `json:"raw_info"`
}

// Classification is the outcome of matching a listing against the taxonomy.
type Classification struct {
	Category   string `json:"category"`
	Generation string `json:"generation"`
}

// ListingBatchEvent carries one run's worth of raw listings over Kafka.
type ListingBatchEvent struct {
	EventType string       `json:"event_type"`
	Date      time.Time    `json:"date"`
	Source    string       `json:"source"`
	Listings  []RawListing `json:"listings"`
	Timestamp time.Time    `json:"timestamp"`
}

// RunEvent announces the outcome of a pipeline run.
type RunEvent struct {
	EventType string           `json:"event_type"`
	Date      time.Time        `json:"date"`
	Source    string           `json:"source"`
	Quality   *QualityLogEntry `json:"quality,omitempty"`
	Error     string           `json:"error,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}
