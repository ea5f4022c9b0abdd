package repository_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
	"github.com/nikolayk812/lpg-cart/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/currency"
)

type cartRepositorySuite struct {
	suite.Suite

	store port.LocalStore
	repo  port.CartRepository
}

// entry point to run the tests in the suite
func TestCartRepositorySuite(t *testing.T) {
	suite.Run(t, new(cartRepositorySuite))
}

// before each test in the suite
func (suite *cartRepositorySuite) SetupTest() {
	suite.store = repository.NewMemoryStore()
	suite.repo = repository.NewCart(suite.store)
}

func (suite *cartRepositorySuite) TestSaveCart() {
	tests := []struct {
		name      string
		cart      domain.CartSnapshot
		wantError string
	}{
		{
			name: "save cart with lines: ok",
			cart: domain.CartSnapshot{
				OwnerID: gofakeit.UUID(),
				Lines:   []domain.CartLine{randomCartLine(), randomCartLine()},
			},
		},
		{
			name: "save cart with offline outbox: ok",
			cart: domain.CartSnapshot{
				OwnerID: gofakeit.UUID(),
				Lines:   []domain.CartLine{randomTempLine()},
				Removed: []string{gofakeit.UUID()},
				Cleared: true,
			},
		},
		{
			name: "save line without price: ok",
			cart: domain.CartSnapshot{
				OwnerID: gofakeit.UUID(),
				Lines: []domain.CartLine{{
					ID:        gofakeit.UUID(),
					ProductID: gofakeit.UUID(),
					Quantity:  1,
					Variant:   domain.VariantSwap,
					State:     domain.StateConfirmed,
				}},
			},
		},
		{
			name:      "save cart with empty owner ID: error",
			cart:      domain.CartSnapshot{Lines: []domain.CartLine{randomCartLine()}},
			wantError: "ownerID is empty",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			err := suite.repo.SaveCart(ctx, tt.cart)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			cart, err := suite.repo.GetCart(ctx, tt.cart.OwnerID)
			require.NoError(t, err)

			assertCart(t, tt.cart, cart)
		})
	}
}

func (suite *cartRepositorySuite) TestGetCart() {
	tests := []struct {
		name      string
		ownerID   string
		setup     []byte
		wantLines int
		wantError string
	}{
		{
			name:    "get never saved cart: empty",
			ownerID: gofakeit.UUID(),
		},
		{
			name:      "get cart with empty owner ID: error",
			ownerID:   "",
			wantError: "ownerID is empty",
		},
		{
			name:      "get cart with corrupted currency: error",
			ownerID:   gofakeit.UUID(),
			setup:     []byte(`{"lines":[{"id":"l1","product_id":"p1","quantity":1,"variant":"NEW","unit_price":{"amount":"1","currency":"???"}}]}`),
			wantError: "mapCartLineRecords: toDomain: line[l1] unit price: currency[???] is not valid",
		},
		{
			name:      "get cart without stored state: defaults to confirmed",
			ownerID:   gofakeit.UUID(),
			setup:     []byte(`{"lines":[{"id":"l1","product_id":"p1","quantity":2,"variant":"SWAP"}]}`),
			wantLines: 1,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			if tt.setup != nil {
				require.NoError(t, suite.store.Put(ctx, port.CollectionCart, tt.ownerID, tt.setup))
			}

			cart, err := suite.repo.GetCart(ctx, tt.ownerID)
			if tt.wantError != "" {
				require.ErrorContains(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.ownerID, cart.OwnerID)
			require.Len(t, cart.Lines, tt.wantLines)
			for _, line := range cart.Lines {
				assert.Equal(t, domain.StateConfirmed, line.State)
			}
		})
	}
}

func (suite *cartRepositorySuite) TestSaveCartOverwrites() {
	t := suite.T()
	ctx := t.Context()
	ownerID := gofakeit.UUID()

	require.NoError(t, suite.repo.SaveCart(ctx, domain.CartSnapshot{
		OwnerID: ownerID,
		Lines:   []domain.CartLine{randomCartLine(), randomCartLine()},
	}))
	require.NoError(t, suite.repo.SaveCart(ctx, domain.CartSnapshot{OwnerID: ownerID}))

	cart, err := suite.repo.GetCart(ctx, ownerID)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func randomCartLine() domain.CartLine {
	return domain.CartLine{
		ID:        gofakeit.UUID(),
		ProductID: gofakeit.UUID(),
		Quantity:  gofakeit.IntRange(1, 5),
		Variant:   randomVariant(),
		State:     domain.StateConfirmed,
		UnitPrice: randomMoney(),
		UpdatedAt: gofakeit.Date().UTC(),
	}
}

func randomTempLine() domain.CartLine {
	line := randomCartLine()
	line.ID = domain.TempIDPrefix + gofakeit.UUID()
	line.State = domain.StatePending
	line.UnitPrice = domain.Money{}
	return line
}

func randomVariant() domain.Variant {
	if gofakeit.Bool() {
		return domain.VariantNew
	}
	return domain.VariantSwap
}

func randomMoney() domain.Money {
	return domain.Money{
		Amount:   decimal.NewFromFloat(gofakeit.Price(1, 100)),
		Currency: randomCurrency(),
	}
}

func randomCurrency() currency.Unit {
	var (
		result currency.Unit
		err    error
	)

	for {
		// tag is not a recognized currency
		result, err = currency.ParseISO(gofakeit.CurrencyShort())
		if err == nil {
			break
		}
	}

	return result
}

func cmpOptions() cmp.Options {
	currencyComparer := cmp.Comparer(func(x, y currency.Unit) bool {
		return x.String() == y.String()
	})
	decimalComparer := cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})
	timeComparer := cmp.Comparer(func(x, y time.Time) bool {
		return x.Equal(y)
	})

	return cmp.Options{currencyComparer, decimalComparer, timeComparer, cmpopts.EquateEmpty()}
}

func assertCart(t *testing.T, expected, actual domain.CartSnapshot) {
	t.Helper()

	diff := cmp.Diff(expected, actual, cmpOptions())
	assert.Empty(t, diff)
}
