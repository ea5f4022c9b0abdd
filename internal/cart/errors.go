package cart

import (
	"errors"

	"github.com/nikolayk812/lpg-cart/internal/domain"
)

var (
	ErrNotOpen         = errors.New("cart is not open")
	ErrOffline         = errors.New("order-service is unreachable")
	ErrUnauthenticated = errors.New("no credential available")
	ErrBusy            = errors.New("another cart operation is in progress")
	ErrLineBusy        = errors.New("cart line has an operation in flight")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrCartNotSynced   = errors.New("cart has changes not confirmed by the server")
	ErrNoCheckout      = errors.New("checkout is not configured")

	ErrMissingAddress = domain.ErrMissingAddress
)
