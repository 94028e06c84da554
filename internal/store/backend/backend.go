// Package backend opens the store.Store implementation named by a driver.
package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sudo-init-do/campusgigs/internal/db"
	"github.com/sudo-init-do/campusgigs/internal/models"
	"github.com/sudo-init-do/campusgigs/internal/store"
	"github.com/sudo-init-do/campusgigs/internal/store/jsonfile"
	"github.com/sudo-init-do/campusgigs/internal/store/postgres"
	"github.com/sudo-init-do/campusgigs/internal/store/sqlite"
)

const (
	DriverJSON     = "json"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Options struct {
	Driver string
	// Path is the data file for json and the database file for sqlite.
	Path string
	DSN  string
	// Seed populates a newly created JSON file. Ignored by the other drivers.
	Seed []models.Service
}

func Open(ctx context.Context, o Options, logger zerolog.Logger) (store.Store, error) {
	logger.Info().Str("driver", o.Driver).Msg("opening store")
	switch o.Driver {
	case DriverJSON:
		var opts []jsonfile.Option
		opts = append(opts, jsonfile.WithLogger(logger))
		if o.Seed != nil {
			opts = append(opts, jsonfile.WithSeed(o.Seed))
		}
		s, err := jsonfile.Open(o.Path, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverSQLite:
		s, err := sqlite.Open(ctx, o.Path, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		pool, err := db.Init(ctx, o.DSN, logger)
		if err != nil {
			return nil, err
		}
		return postgres.New(pool), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", o.Driver)
}
