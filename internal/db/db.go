package db

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Params are the discrete connection settings used when no DSN is given.
type Params struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

// DSN builds a postgres URL from p.
func (p Params) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   p.Host + ":" + p.Port,
		Path:   "/" + p.Name,
	}
	return u.String()
}

// Init connects to Postgres, pings it and makes sure the schema exists.
func Init(ctx context.Context, dsn string, logger zerolog.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	logger.Info().Msg("connected to postgres")

	if err := EnsureSchema(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// EnsureSchema creates missing tables and indexes. It is safe to run on
// every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	steps := []struct {
		name string
		fn   func(context.Context, *pgxpool.Pool) error
	}{
		{"users", ensureUsersTable},
		{"services", ensureServicesTable},
		{"carts", ensureCartsTable},
		{"wishlists", ensureWishlistsTable},
		{"orders", ensureOrdersTable},
	}
	for _, s := range steps {
		if err := s.fn(ctx, pool); err != nil {
			return fmt.Errorf("ensure %s schema: %w", s.name, err)
		}
		logger.Debug().Str("table", s.name).Msg("schema ensured")
	}
	return nil
}

func ensureUsersTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			email        TEXT NOT NULL UNIQUE,
			name         TEXT NOT NULL DEFAULT '',
			image        TEXT NOT NULL DEFAULT '',
			is_admin     BOOLEAN NOT NULL DEFAULT FALSE,
			phone_number TEXT,
			usn          TEXT,
			semester     INTEGER CHECK (semester BETWEEN 1 AND 8),
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

func ensureServicesTable(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS services (
			id                TEXT PRIMARY KEY,
			title             TEXT NOT NULL,
			description       TEXT NOT NULL,
			category          TEXT NOT NULL,
			price_kind        TEXT NOT NULL CHECK (price_kind IN ('fixed', 'range')),
			price_min         DOUBLE PRECISION NOT NULL,
			price_max         DOUBLE PRECISION NOT NULL,
			currency          TEXT NOT NULL DEFAULT 'INR',
			host_name         TEXT NOT NULL,
			host_email        TEXT NOT NULL,
			host_rating       DOUBLE PRECISION NOT NULL DEFAULT 4.7,
			tags              TEXT[] NOT NULL DEFAULT '{}',
			delivery_estimate TEXT,
			portfolio_link    TEXT,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return err
	}
	_, err := pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS services_host_email_idx ON services (host_email)`)
	return err
}

// Cart and wishlist rows carry no foreign key; the store removes them in
// the same transaction that deletes the service.
func ensureCartsTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS carts (
			id                TEXT PRIMARY KEY,
			user_email        TEXT NOT NULL,
			service_id        TEXT NOT NULL,
			quantity          INTEGER NOT NULL DEFAULT 1,
			portfolio_link    TEXT NOT NULL,
			message           TEXT NOT NULL,
			negotiation_price DOUBLE PRECISION,
			added_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_email, service_id)
		)`)
	return err
}

func ensureWishlistsTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS wishlists (
			id         TEXT PRIMARY KEY,
			user_email TEXT NOT NULL,
			service_id TEXT NOT NULL,
			added_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_email, service_id)
		)`)
	return err
}

func ensureOrdersTable(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			seq                 BIGSERIAL,
			id                  TEXT PRIMARY KEY,
			buyer_email         TEXT NOT NULL,
			buyer_name          TEXT NOT NULL,
			host_email          TEXT NOT NULL DEFAULT '',
			host_name           TEXT NOT NULL DEFAULT '',
			listing_title       TEXT NOT NULL DEFAULT '',
			listing_description TEXT NOT NULL DEFAULT '',
			service_id          TEXT NOT NULL,
			portfolio_link      TEXT NOT NULL DEFAULT '',
			message             TEXT NOT NULL DEFAULT '',
			status              TEXT NOT NULL DEFAULT 'carted',
			items               JSONB NOT NULL DEFAULT '[]',
			total               DOUBLE PRECISION NOT NULL DEFAULT 0,
			currency            TEXT NOT NULL DEFAULT 'INR',
			placed_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_activity       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return err
	}
	_, err := pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS orders_buyer_email_idx ON orders (buyer_email)`)
	return err
}
