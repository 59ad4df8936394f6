package domain

import "time"

// CatalogSnapshot is a point-in-time copy of the full product catalog.
// Snapshots are replaced wholesale on refresh, never mutated in place.
type CatalogSnapshot struct {
	Products  []Product `json:"products"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// EmptySnapshot returns a snapshot with no products and a zero timestamp.
func EmptySnapshot() CatalogSnapshot {
	return CatalogSnapshot{Products: []Product{}}
}

// Age reports how old the snapshot is at the given instant.
func (s CatalogSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}
