package repository_test

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/lpg-cart/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// localStoreSuite checks the behaviour every port.LocalStore adapter must share.
type localStoreSuite struct {
	suite.Suite

	store port.LocalStore
	reset func()
}

func (suite *localStoreSuite) SetupTest() {
	if suite.reset != nil {
		suite.reset()
	}
}

func (suite *localStoreSuite) TestPutGet() {
	tests := []struct {
		name       string
		collection port.Collection
		key        string
		value      []byte
		wantError  string
		wantErrIs  error
	}{
		{
			name:       "put and get cart: ok",
			collection: port.CollectionCart,
			key:        gofakeit.UUID(),
			value:      randomJSON(),
		},
		{
			name:       "put and get product: ok",
			collection: port.CollectionProducts,
			key:        gofakeit.UUID(),
			value:      randomJSON(),
		},
		{
			name:       "empty key: error",
			collection: port.CollectionOrders,
			key:        "",
			value:      randomJSON(),
			wantError:  "key is empty",
		},
		{
			name:       "unknown collection: error",
			collection: port.Collection("wishlist"),
			key:        gofakeit.UUID(),
			value:      randomJSON(),
			wantErrIs:  port.ErrUnknownCollection,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			err := suite.store.Put(ctx, tt.collection, tt.key, tt.value)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)

			got, err := suite.store.Get(ctx, tt.collection, tt.key)
			require.NoError(t, err)
			assert.JSONEq(t, string(tt.value), string(got))
		})
	}
}

func (suite *localStoreSuite) TestPutOverwrites() {
	t := suite.T()
	ctx := t.Context()
	key := gofakeit.UUID()

	require.NoError(t, suite.store.Put(ctx, port.CollectionCart, key, []byte(`{"v":1}`)))
	require.NoError(t, suite.store.Put(ctx, port.CollectionCart, key, []byte(`{"v":2}`)))

	got, err := suite.store.Get(ctx, port.CollectionCart, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got))

	all, err := suite.store.GetAll(ctx, port.CollectionCart)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func (suite *localStoreSuite) TestGetMissing() {
	t := suite.T()

	_, err := suite.store.Get(t.Context(), port.CollectionProfile, gofakeit.UUID())
	require.ErrorIs(t, err, port.ErrNotFound)
}

func (suite *localStoreSuite) TestCollectionsAreIsolated() {
	t := suite.T()
	ctx := t.Context()
	key := gofakeit.UUID()

	require.NoError(t, suite.store.Put(ctx, port.CollectionCart, key, []byte(`{"in":"cart"}`)))

	_, err := suite.store.Get(ctx, port.CollectionOrders, key)
	require.ErrorIs(t, err, port.ErrNotFound)

	require.NoError(t, suite.store.Clear(ctx, port.CollectionOrders))

	got, err := suite.store.Get(ctx, port.CollectionCart, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"in":"cart"}`, string(got))
}

func (suite *localStoreSuite) TestDelete() {
	t := suite.T()
	ctx := t.Context()
	key := gofakeit.UUID()

	require.NoError(t, suite.store.Put(ctx, port.CollectionOrders, key, randomJSON()))
	require.NoError(t, suite.store.Delete(ctx, port.CollectionOrders, key))

	_, err := suite.store.Get(ctx, port.CollectionOrders, key)
	require.ErrorIs(t, err, port.ErrNotFound)

	// deleting a missing key is not an error
	require.NoError(t, suite.store.Delete(ctx, port.CollectionOrders, key))
}

func (suite *localStoreSuite) TestGetAllAndClear() {
	t := suite.T()
	ctx := t.Context()

	keys := []string{"a-" + gofakeit.UUID(), "b-" + gofakeit.UUID(), "c-" + gofakeit.UUID()}
	for _, key := range []string{keys[2], keys[0], keys[1]} {
		require.NoError(t, suite.store.Put(ctx, port.CollectionProducts, key, randomJSON()))
	}

	all, err := suite.store.GetAll(ctx, port.CollectionProducts)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, record := range all {
		assert.Equal(t, keys[i], record.Key)
	}

	require.NoError(t, suite.store.Clear(ctx, port.CollectionProducts))
	require.NoError(t, suite.store.Clear(ctx, port.CollectionProducts))

	all, err = suite.store.GetAll(ctx, port.CollectionProducts)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func (suite *localStoreSuite) TestReplaceAll() {
	t := suite.T()
	ctx := t.Context()

	require.NoError(t, suite.store.Put(ctx, port.CollectionProducts, "stale", randomJSON()))

	records := []port.Record{
		{Key: "p1", Value: []byte(`{"name":"11kg"}`)},
		{Key: "p2", Value: []byte(`{"name":"50kg"}`)},
	}
	require.NoError(t, suite.store.ReplaceAll(ctx, port.CollectionProducts, records))

	all, err := suite.store.GetAll(ctx, port.CollectionProducts)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "p1", all[0].Key)
	assert.JSONEq(t, `{"name":"50kg"}`, string(all[1].Value))

	// a bad record leaves the previous contents untouched
	err = suite.store.ReplaceAll(ctx, port.CollectionProducts, []port.Record{{Key: "p3", Value: randomJSON()}, {Key: ""}})
	require.Error(t, err)

	all, err = suite.store.GetAll(ctx, port.CollectionProducts)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func randomJSON() []byte {
	return []byte(fmt.Sprintf(`{"name":%q,"quantity":%d}`, gofakeit.ProductName(), gofakeit.IntRange(1, 9)))
}
