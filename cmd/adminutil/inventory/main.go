package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/sudo-init-do/campusgigs/internal/config"
	"github.com/sudo-init-do/campusgigs/internal/logging"
	"github.com/sudo-init-do/campusgigs/internal/marketplace"
	"github.com/sudo-init-do/campusgigs/internal/store/backend"
)

// inventory prints the admin inventory straight from a store, without a
// running server.
// Usage:
//
//	go run ./cmd/adminutil/inventory -driver sqlite -details
func main() {
	driver := flag.String("driver", "", "store driver (json, postgres, sqlite); defaults to STORE_DRIVER")
	admin := flag.String("admin", marketplace.AdminEmail, "admin email to authorize as")
	details := flag.Bool("details", false, "include contact details and joined listings")
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

	mp := marketplace.New(s)
	var out any
	if *details {
		out, err = mp.InventoryDetails(ctx, *admin)
	} else {
		out, err = mp.InventorySnapshot(ctx, *admin)
	}
	if err != nil {
		log.Fatalf("inventory: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode: %v", err)
	}
}
