package catalog_test

import (
	"net/http"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"

	"github.com/nikolayk812/lpg-cart/internal/catalog"
	"github.com/nikolayk812/lpg-cart/internal/connectivity"
	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
	"github.com/nikolayk812/lpg-cart/internal/remote"
	"github.com/nikolayk812/lpg-cart/internal/remote/remotetest"
	"github.com/nikolayk812/lpg-cart/internal/repository"
)

func setup(t *testing.T) (*catalog.Service, *remotetest.Server, *connectivity.Monitor) {
	t.Helper()

	srv := remotetest.NewServer()
	t.Cleanup(srv.Close)

	client, err := remote.NewClient(srv.URL(), nil, remote.NewStaticCredentials(gofakeit.UUID()))
	require.NoError(t, err)

	monitor := connectivity.NewMonitor(true)
	svc := catalog.NewService(client, repository.NewProducts(repository.NewMemoryStore()), monitor, nil)

	return svc, srv, monitor
}

func randomProduct() domain.Product {
	return domain.Product{
		ID:        gofakeit.UUID(),
		Name:      gofakeit.ProductName(),
		Kind:      gofakeit.RandomString([]string{"2.7kg", "11kg", "22kg", "50kg"}),
		Price:     domain.Money{Amount: decimal.NewFromInt(int64(gofakeit.IntRange(100, 5000))), Currency: currency.MustParseISO("PHP")},
		Available: gofakeit.Bool(),
	}
}

func TestService_RefreshThenServeOffline(t *testing.T) {
	ctx := t.Context()
	svc, srv, monitor := setup(t)

	p1, p2 := randomProduct(), randomProduct()
	srv.SetProducts(p1, p2)

	refreshed, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, refreshed, 2)

	monitor.SetOnline(false)

	cached, err := svc.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{p1.ID, p2.ID}, []string{cached[0].ID, cached[1].ID})

	got, err := svc.Get(ctx, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, p2.Name, got.Name)
	assert.True(t, p2.Price.Amount.Equal(got.Price.Amount))

	_, err = svc.Get(ctx, gofakeit.UUID())
	require.ErrorIs(t, err, port.ErrNotFound)

	_, err = svc.Refresh(ctx)
	require.ErrorIs(t, err, catalog.ErrOffline)
}

func TestService_RefreshFailureKeepsCache(t *testing.T) {
	ctx := t.Context()
	svc, srv, _ := setup(t)

	product := randomProduct()
	srv.SetProducts(product)
	_, err := svc.Refresh(ctx)
	require.NoError(t, err)

	srv.SetProducts(randomProduct(), randomProduct())
	srv.FailNext("GET /api/products", http.StatusInternalServerError)

	_, err = svc.Refresh(ctx)
	var statusErr *remote.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.True(t, remote.IsRetryable(err))

	cached, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, product.ID, cached[0].ID)
}

func TestService_ListRefreshesEmptyCache(t *testing.T) {
	svc, srv, _ := setup(t)
	srv.SetProducts(randomProduct())

	products, err := svc.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 1, srv.Calls("GET /api/products"))
}
