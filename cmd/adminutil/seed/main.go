package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/sudo-init-do/campusgigs/internal/catalog"
	"github.com/sudo-init-do/campusgigs/internal/config"
	"github.com/sudo-init-do/campusgigs/internal/logging"
	"github.com/sudo-init-do/campusgigs/internal/store/backend"
)

// seed inserts the starter catalog into a store. Listings whose title is
// already present are skipped, so running it twice is harmless.
// Usage:
//
//	go run ./cmd/adminutil/seed -driver postgres
func main() {
	driver := flag.String("driver", "", "store driver (json, postgres, sqlite); defaults to STORE_DRIVER")
	fallback := flag.Bool("fallback", false, "insert the offline example catalog instead of the starter listings")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *driver != "" {
		cfg.StoreDriver = *driver
	}
	logger := logging.New(cfg.LogLevel, true)

	ctx := context.Background()
	s, err := backend.Open(ctx, cfg.Backend(), logger)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer s.Close()

	existing, err := s.ListServices(ctx)
	if err != nil {
		log.Fatalf("list services: %v", err)
	}
	have := map[string]bool{}
	for _, svc := range existing {
		have[svc.Title] = true
	}

	services := catalog.Seed()
	if *fallback {
		services = catalog.Fallback()
	}
	// Oldest first so the store's newest-first order matches the catalog.
	added := 0
	for i := len(services) - 1; i >= 0; i-- {
		svc := services[i]
		if have[svc.Title] {
			continue
		}
		if err := s.InsertService(ctx, &svc); err != nil {
			log.Fatalf("insert %q: %v", svc.Title, err)
		}
		added++
	}
	fmt.Printf("Seeded %d listing(s), %d already present.\n", added, len(services)-added)
}
