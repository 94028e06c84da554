package jsonfile_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sudo-init-do/campusgigs/internal/catalog"
	"github.com/sudo-init-do/campusgigs/internal/models"
	"github.com/sudo-init-do/campusgigs/internal/store"
	"github.com/sudo-init-do/campusgigs/internal/store/jsonfile"
	"github.com/sudo-init-do/campusgigs/internal/store/storetest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := jsonfile.Open(filepath.Join(t.TempDir(), "db.json"))
		require.NoError(t, err)
		return s
	})
}

func TestOpenSeedsNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db.json")
	s, err := jsonfile.Open(path, jsonfile.WithSeed(catalog.Seed()))
	require.NoError(t, err)

	services, err := s.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 6)
	assert.Equal(t, "CAD Homework Lifeline", services[0].Title)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"users", "services", "carts", "wishlists", "orders"} {
		assert.Contains(t, doc, key)
	}
	assert.JSONEq(t, `[]`, string(doc["orders"]))
}

func TestOpenKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	s, err := jsonfile.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.InsertService(context.Background(), &models.Service{ID: "x", Title: "mine", Price: models.Fixed(10)}))

	reopened, err := jsonfile.Open(path, jsonfile.WithSeed(catalog.Seed()))
	require.NoError(t, err)
	services, err := reopened.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "mine", services[0].Title)
}

func TestRecreatesDeletedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	s, err := jsonfile.Open(path, jsonfile.WithSeed(catalog.Seed()))
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	services, err := s.ListServices(context.Background())
	require.NoError(t, err)
	assert.Len(t, services, 6)
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	s, err := jsonfile.Open(path)
	require.NoError(t, err)
	_, err = s.ListServices(context.Background())
	assert.Error(t, err)
}

func TestCanceledContext(t *testing.T) {
	s, err := jsonfile.Open(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.ListServices(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
