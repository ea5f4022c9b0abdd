package remote_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"

	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
	"github.com/nikolayk812/lpg-cart/internal/remote"
	"github.com/nikolayk812/lpg-cart/internal/remote/remotetest"
)

const token = "token-1"

func newClient(t *testing.T) (*remote.Client, *remotetest.Server) {
	t.Helper()

	srv := remotetest.NewServer()
	t.Cleanup(srv.Close)

	client, err := remote.NewClient(srv.URL(), nil, remote.NewStaticCredentials(token))
	require.NoError(t, err)

	return client, srv
}

func TestNewClient_Validation(t *testing.T) {
	creds := remote.NewStaticCredentials(token)

	_, err := remote.NewClient(" ", nil, creds)
	require.EqualError(t, err, "order-service base URL is required")

	_, err = remote.NewClient("localhost:8080", nil, creds)
	require.Error(t, err)

	_, err = remote.NewClient("http://localhost:8080", nil, nil)
	require.EqualError(t, err, "credentials are required")
}

func TestClient_CartRoundTrip(t *testing.T) {
	ctx := t.Context()
	client, srv := newClient(t)

	php := currency.MustParseISO("PHP")
	srv.SetProducts(domain.Product{
		ID:        "lpg-11kg",
		Name:      "LPG 11kg",
		Kind:      "11kg",
		Price:     domain.Money{Amount: decimal.RequireFromString("950.50"), Currency: php},
		Available: true,
	})

	created, err := client.CreateLine(ctx, domain.CartLine{
		ID:        domain.TempIDPrefix + gofakeit.UUID(),
		ProductID: "lpg-11kg",
		Quantity:  2,
		Variant:   domain.VariantSwap,
	})
	require.NoError(t, err)
	assert.False(t, created.IsTemporary())
	assert.Equal(t, domain.StateConfirmed, created.State)
	assert.True(t, created.UnitPrice.Amount.Equal(decimal.RequireFromString("950.50")))
	assert.Equal(t, php, created.UnitPrice.Currency)

	created.Quantity = 3
	updated, err := client.UpdateLine(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 3, updated.Quantity)

	lines, err := client.ListCart(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, created.ID, lines[0].ID)

	require.NoError(t, client.DeleteLine(ctx, created.ID))
	lines, err = client.ListCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)

	require.NoError(t, client.ClearCart(ctx))
}

func TestClient_CreateLineIsIdempotentPerTempID(t *testing.T) {
	ctx := t.Context()
	client, srv := newClient(t)

	line := domain.CartLine{
		ID:        domain.TempIDPrefix + gofakeit.UUID(),
		ProductID: gofakeit.UUID(),
		Quantity:  1,
		Variant:   domain.VariantNew,
	}

	first, err := client.CreateLine(ctx, line)
	require.NoError(t, err)
	second, err := client.CreateLine(ctx, line)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, srv.Cart(token), 1)
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name          string
		route         string
		status        int
		call          func(ctx context.Context, c *remote.Client) error
		wantRetryable bool
		wantNotFound  bool
		wantRejected  bool
	}{
		{
			name:   "server error is retryable",
			route:  "GET /api/cart",
			status: http.StatusBadGateway,
			call: func(ctx context.Context, c *remote.Client) error {
				_, err := c.ListCart(ctx)
				return err
			},
			wantRetryable: true,
		},
		{
			name:   "validation error is final",
			route:  "POST /api/cart",
			status: http.StatusUnprocessableEntity,
			call: func(ctx context.Context, c *remote.Client) error {
				_, err := c.CreateLine(ctx, domain.CartLine{ProductID: "p", Quantity: 1, Variant: domain.VariantNew})
				return err
			},
			wantRejected: true,
		},
		{
			name:   "too many requests is retryable",
			route:  "DELETE /api/cart",
			status: http.StatusTooManyRequests,
			call: func(ctx context.Context, c *remote.Client) error {
				return c.ClearCart(ctx)
			},
			wantRetryable: true,
		},
		{
			name: "unknown line is not found",
			call: func(ctx context.Context, c *remote.Client) error {
				return c.DeleteLine(ctx, gofakeit.UUID())
			},
			wantNotFound: true,
			wantRejected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, srv := newClient(t)
			if tt.route != "" {
				srv.FailNext(tt.route, tt.status)
			}

			err := tt.call(t.Context(), client)
			require.Error(t, err)

			var statusErr *remote.StatusError
			require.True(t, errors.As(err, &statusErr))
			require.NotNil(t, statusErr.Problem)
			assert.Equal(t, tt.wantRetryable, remote.IsRetryable(err))
			assert.Equal(t, tt.wantNotFound, errors.Is(err, port.ErrNotFound))
			assert.Equal(t, tt.wantRejected, errors.Is(err, port.ErrRejected))
		})
	}
}

func TestClient_Unauthenticated(t *testing.T) {
	srv := remotetest.NewServer()
	t.Cleanup(srv.Close)

	creds := remote.NewStaticCredentials("")
	client, err := remote.NewClient(srv.URL(), nil, creds)
	require.NoError(t, err)

	_, err = client.ListCart(t.Context())
	require.ErrorIs(t, err, remote.ErrUnauthenticated)
	assert.False(t, remote.IsRetryable(err))
	assert.Zero(t, srv.Calls("GET /api/cart"))

	// health checks do not need a token
	require.NoError(t, client.Health(t.Context()))

	creds.Set(token)
	_, err = client.ListCart(t.Context())
	require.NoError(t, err)
}

func TestClient_TransportErrorIsRetryable(t *testing.T) {
	srv := remotetest.NewServer()
	url := srv.URL()
	srv.Close()

	client, err := remote.NewClient(url, &http.Client{Timeout: time.Second}, remote.NewStaticCredentials(token))
	require.NoError(t, err)

	_, err = client.ListCart(t.Context())
	require.Error(t, err)
	assert.True(t, remote.IsRetryable(err))
}

func TestClient_CreateOrder(t *testing.T) {
	ctx := t.Context()
	client, srv := newClient(t)

	php := currency.MustParseISO("PHP")
	srv.SetProducts(domain.Product{ID: "lpg-50kg", Name: "LPG 50kg", Price: domain.Money{Amount: decimal.NewFromInt(4000), Currency: php}})

	line, err := client.CreateLine(ctx, domain.CartLine{ProductID: "lpg-50kg", Quantity: 2, Variant: domain.VariantNew})
	require.NoError(t, err)

	order, err := client.CreateOrder(ctx, port.OrderRequest{
		Lines:    []domain.CartLine{line},
		Address:  domain.Address{Line1: gofakeit.Street(), City: gofakeit.City()},
		Schedule: domain.DeliverySchedule{Frequency: domain.FrequencyWeekly, PreferredDay: time.Friday},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, domain.OrderScheduled, order.Status)
	assert.Equal(t, time.Friday, order.Schedule.PreferredDay)
	assert.True(t, order.Total.Amount.Equal(decimal.NewFromInt(8000)))
	assert.Empty(t, srv.Cart(token))
	assert.Len(t, srv.Orders(), 1)
}
