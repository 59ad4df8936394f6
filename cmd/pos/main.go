package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"posterminal/internal/api"
	"posterminal/internal/cart"
	"posterminal/internal/catalog"
	"posterminal/internal/checkout"
	"posterminal/internal/config"
	"posterminal/internal/notify"
	"posterminal/internal/scanner"
	"posterminal/internal/store"
)

func main() {
	profilePath := flag.String("profile", "", "path to terminal profile YAML (default $POS_PROFILE)")
	flag.Parse()

	logger := log.New(os.Stderr, "[pos] ", log.LstdFlags|log.LUTC)

	profile, err := config.LoadTerminalProfile(*profilePath)
	if err != nil {
		logger.Fatalf("load profile: %v", err)
	}

	kv, err := store.OpenSQLite(profile.SnapshotDBPath)
	if err != nil {
		logger.Fatalf("open snapshot store: %v", err)
	}
	defer kv.Close()

	notifier := notify.NewLogger(log.New(os.Stderr, "", 0))
	client := api.New(profile.APIBaseURL, logger)
	cache := catalog.New(client, kv, notifier, logger, catalog.Config{
		Validity:  profile.Catalog.Validity(),
		Freshness: profile.Catalog.Freshness(),
		PageSize:  profile.Catalog.PageSize,
	})
	staged := cart.New()
	orchestrator := checkout.New(client, staged, cache, notifier, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Serve whatever the last session left behind, then revalidate.
	snap := cache.LoadInitial(ctx)
	fmt.Printf("catalog: %d products from local snapshot\n", len(snap.Products))
	go func() {
		if err := cache.Refresh(ctx); err == nil {
			fmt.Printf("catalog: refreshed, %d products\n", len(cache.Snapshot().Products))
		}
	}()
	go refreshLoop(ctx, cache)

	restore, err := rawInput()
	if err != nil {
		logger.Fatalf("raw terminal input: %v", err)
	}
	defer restore()

	term := &terminal{
		cache:        cache,
		cart:         staged,
		orchestrator: orchestrator,
		stream: scanner.NewStream(scanner.Config{
			BurstWindow:   profile.Scanner.BurstWindow(),
			IdleTimeout:   profile.Scanner.IdleTimeout(),
			MinCodeLength: profile.Scanner.MinCodeLength,
		}),
		payments: profile.PaymentMethods,
	}
	term.run(ctx)
}

// refreshLoop revalidates the catalog in the background whenever it goes
// stale. Reads are never blocked on this.
func refreshLoop(ctx context.Context, cache *catalog.Cache) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if cache.Stale() {
				_ = cache.Refresh(ctx)
			}
		}
	}
}
