// Package catalog maintains a bounded-staleness snapshot of the product
// catalog, served from memory with local-persistence fallback.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"posterminal/internal/domain"
	"posterminal/internal/notify"
	"posterminal/internal/store"
)

const snapshotKey = "catalog_snapshot"

const (
	defaultValidity  = 30 * time.Minute
	defaultFreshness = 5 * time.Minute
	defaultPageSize  = 100
)

type productAPI interface {
	ListProducts(ctx context.Context, limit, offset int) ([]domain.Product, error)
	GetVariantBySKU(ctx context.Context, sku string) (*domain.Variant, *domain.Product, error)
}

// Config tunes the cache windows. Zero fields fall back to defaults.
type Config struct {
	// Validity bounds how old a persisted snapshot may be and still be
	// served at startup.
	Validity time.Duration
	// Freshness bounds how old the in-memory snapshot may be before it is
	// eligible for background refresh. Stale reads are still served.
	Freshness time.Duration
	// PageSize is the catalog fetch page size.
	PageSize int
}

func (c Config) withDefaults() Config {
	if c.Validity <= 0 {
		c.Validity = defaultValidity
	}
	if c.Freshness <= 0 {
		c.Freshness = defaultFreshness
	}
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	return c
}

// Cache owns the catalog snapshot. Reads never block on a refresh; a failed
// refresh degrades to the last known good snapshot.
type Cache struct {
	api      productAPI
	kv       store.KV
	notifier notify.Notifier
	logger   *log.Logger
	cfg      Config

	mu           sync.Mutex
	snapshot     domain.CatalogSnapshot
	nextSeq      uint64
	installedSeq uint64
	marked       bool
}

func New(api productAPI, kv store.KV, notifier notify.Notifier, logger *log.Logger, cfg Config) *Cache {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Cache{
		api:      api,
		kv:       kv,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg.withDefaults(),
		snapshot: domain.EmptySnapshot(),
	}
}

// LoadInitial installs the most recent persisted snapshot if it is still
// within the validity window, and returns it. It never touches the network,
// so the terminal can render before any round-trip completes. Anything wrong
// with the persisted blob degrades to the empty snapshot.
func (c *Cache) LoadInitial(ctx context.Context) domain.CatalogSnapshot {
	blob, err := c.kv.Get(ctx, snapshotKey)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.logger.Printf("catalog: read persisted snapshot: %v", err)
		}
		return c.Snapshot()
	}

	var snap domain.CatalogSnapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		c.logger.Printf("catalog: decode persisted snapshot: %v", err)
		return c.Snapshot()
	}
	if snap.Age(time.Now()) > c.cfg.Validity {
		c.logger.Printf("catalog: persisted snapshot from %s is past validity, ignoring", snap.FetchedAt.Format(time.RFC3339))
		return c.Snapshot()
	}

	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()
	c.logger.Printf("catalog: loaded %d products from local snapshot", len(snap.Products))
	return snap
}

// Refresh fetches the full catalog and replaces the snapshot wholesale. On
// failure the existing snapshot is untouched and the cashier gets a soft
// notice. Refreshes are sequenced: a completion that would install older data
// than what a later refresh already installed is discarded.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.nextSeq++
	seq := c.nextSeq
	c.mu.Unlock()

	products, err := c.fetchAll(ctx)
	if err != nil {
		c.logger.Printf("catalog: refresh failed: %v", err)
		c.notifier.Info("catalog refresh failed; showing last known catalog")
		return err
	}

	snap := domain.CatalogSnapshot{Products: products, FetchedAt: time.Now().UTC()}

	c.mu.Lock()
	if seq < c.installedSeq {
		c.mu.Unlock()
		c.logger.Printf("catalog: discarding stale-ordered refresh %d", seq)
		return nil
	}
	c.snapshot = snap
	c.installedSeq = seq
	c.marked = false
	c.mu.Unlock()

	blob, err := json.Marshal(snap)
	if err != nil {
		c.logger.Printf("catalog: encode snapshot: %v", err)
		return nil
	}
	if err := c.kv.Set(ctx, snapshotKey, blob); err != nil {
		// Persistence failure only costs the next cold start.
		c.logger.Printf("catalog: persist snapshot: %v", err)
	}
	c.logger.Printf("catalog: refreshed %d products", len(products))
	return nil
}

func (c *Cache) fetchAll(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	for offset := 0; ; offset += c.cfg.PageSize {
		page, err := c.api.ListProducts(ctx, c.cfg.PageSize, offset)
		if err != nil {
			return nil, err
		}
		products = append(products, page...)
		if len(page) < c.cfg.PageSize {
			return products, nil
		}
	}
}

// Snapshot returns the current in-memory snapshot. Never blocks on a
// refresh; the result may be stale or empty.
func (c *Cache) Snapshot() domain.CatalogSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Stale reports whether the snapshot is due for a background refresh: older
// than the freshness window, never fetched, or explicitly marked.
func (c *Cache) Stale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.marked || c.snapshot.FetchedAt.IsZero() {
		return true
	}
	return c.snapshot.Age(time.Now()) > c.cfg.Freshness
}

// MarkStale flags the snapshot for refresh, e.g. after a successful checkout
// changed stock levels.
func (c *Cache) MarkStale() {
	c.mu.Lock()
	c.marked = true
	c.mu.Unlock()
}

// LookupBySKU resolves a scanned code through a dedicated network call; the
// bulk snapshot may be stale or partial, so it is never consulted here.
// Returns domain.ErrNotFound when nothing matches.
func (c *Cache) LookupBySKU(ctx context.Context, sku string) (*domain.Variant, *domain.Product, error) {
	return c.api.GetVariantBySKU(ctx, sku)
}
