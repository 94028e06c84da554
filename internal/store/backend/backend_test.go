package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/campusgigs/internal/catalog"
)

func TestOpenJSONSeedsCatalog(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Options{
		Driver: DriverJSON,
		Path:   filepath.Join(t.TempDir(), "db.json"),
		Seed:   catalog.Seed(),
	}, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	services, err := s.ListServices(ctx)
	require.NoError(t, err)
	assert.Len(t, services, len(catalog.Seed()))
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Options{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "gigs.db")}, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.Ping(ctx))
}

func TestOpenUnknownDriver(t *testing.T) {
	s, err := Open(context.Background(), Options{Driver: "mongo"}, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, s)
}
