package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/campusgigs/internal/db"
	"github.com/sudo-init-do/campusgigs/internal/store"
	"github.com/sudo-init-do/campusgigs/internal/store/postgres"
	"github.com/sudo-init-do/campusgigs/internal/store/storetest"
)

// The contract run needs a disposable database; point TEST_DATABASE_URL at
// one to enable it.
func TestContract(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		pool, err := db.Init(ctx, dsn, zerolog.Nop())
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `TRUNCATE users, services, carts, wishlists, orders`)
		require.NoError(t, err)
		return postgres.New(pool)
	})
}
