package cart_test

import (
	"net/http"

	"github.com/nikolayk812/lpg-cart/internal/cart"
	"github.com/nikolayk812/lpg-cart/internal/domain"
)

func (suite *storeSuite) TestSyncOnReconnect() {
	ctx := suite.T().Context()

	unsubscribe := cart.SyncOnReconnect(ctx, suite.monitor, suite.store, suite.recorder, nil)
	defer unsubscribe()

	suite.monitor.SetOnline(false)
	suite.Equal(1, suite.recorder.Count(domain.KindOffline))

	_, err := suite.store.Add(ctx, "lpg-11kg", domain.VariantNew, 2)
	suite.Require().NoError(err)

	suite.monitor.SetOnline(true)
	suite.Equal(1, suite.recorder.Count(domain.KindReconnected))

	lines := suite.store.Lines()
	suite.Require().Len(lines, 1)
	suite.False(lines[0].IsTemporary())
	suite.Len(suite.srv.Cart(suite.ownerID), 1)
}

func (suite *storeSuite) TestSyncOnReconnect_FailedResyncStillReconnects() {
	ctx := suite.T().Context()

	unsubscribe := cart.SyncOnReconnect(ctx, suite.monitor, suite.store, suite.recorder, nil)
	defer unsubscribe()

	suite.monitor.SetOnline(false)
	_, err := suite.store.Add(ctx, "lpg-11kg", domain.VariantNew, 1)
	suite.Require().NoError(err)

	suite.srv.FailNext(routeCreate, http.StatusServiceUnavailable)
	suite.monitor.SetOnline(true)

	suite.Equal(1, suite.recorder.Count(domain.KindReconnected))
	suite.Equal(1, suite.recorder.Count(domain.KindSyncFailed))
	suite.True(suite.store.Lines()[0].IsTemporary())
	suite.True(suite.store.Snapshot().HasOutbox())
}

func (suite *storeSuite) TestSyncOnReconnect_NilNotifier() {
	ctx := suite.T().Context()

	unsubscribe := cart.SyncOnReconnect(ctx, suite.monitor, suite.store, nil, nil)
	defer unsubscribe()

	suite.monitor.SetOnline(false)
	_, err := suite.store.Add(ctx, "lpg-22kg", domain.VariantSwap, 1)
	suite.Require().NoError(err)

	suite.Require().NotPanics(func() { suite.monitor.SetOnline(true) })

	lines := suite.store.Lines()
	suite.Require().Len(lines, 1)
	suite.False(lines[0].IsTemporary())
	suite.Zero(suite.recorder.Count(domain.KindReconnected))
}
