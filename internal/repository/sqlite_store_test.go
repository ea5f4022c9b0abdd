package repository_test

import (
	"path/filepath"
	"testing"

	"github.com/nikolayk812/lpg-cart/internal/port"
	"github.com/nikolayk812/lpg-cart/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestSQLiteStoreSuite(t *testing.T) {
	s := &localStoreSuite{}
	s.reset = func() {
		store, err := repository.OpenSQLiteStore(s.T().Context(), "file:"+filepath.Join(s.T().TempDir(), "local.db"))
		s.Require().NoError(err)
		s.T().Cleanup(func() { _ = store.Close() })
		s.store = store
	}
	suite.Run(t, s)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := t.Context()
	dsn := "file:" + filepath.Join(t.TempDir(), "local.db")

	store, err := repository.OpenSQLiteStore(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, port.CollectionCart, "owner-1", []byte(`{"owner_id":"owner-1"}`)))
	require.NoError(t, store.Close())

	reopened, err := repository.OpenSQLiteStore(ctx, dsn)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, port.CollectionCart, "owner-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"owner_id":"owner-1"}`, string(got))
}

func TestOpenSQLiteStore_EmptyDSN(t *testing.T) {
	_, err := repository.OpenSQLiteStore(t.Context(), " ")
	require.EqualError(t, err, "sqlite dsn is empty")
}
