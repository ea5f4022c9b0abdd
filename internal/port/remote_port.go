package port

import (
	"context"
	"errors"

	"github.com/nikolayk812/lpg-cart/internal/domain"
)

// ErrRejected marks a final refusal by the server (a 4xx other than 401, 408 and 429).
// Remote errors also match ErrNotFound for 404 answers.
var ErrRejected = errors.New("rejected by server")

// CartRemote is the order-service cart resource. Any non-2xx answer is an error.
type CartRemote interface {
	ListCart(ctx context.Context) ([]domain.CartLine, error)
	CreateLine(ctx context.Context, line domain.CartLine) (domain.CartLine, error)
	UpdateLine(ctx context.Context, line domain.CartLine) (domain.CartLine, error)
	DeleteLine(ctx context.Context, lineID string) error
	ClearCart(ctx context.Context) error
}

type OrderRemote interface {
	CreateOrder(ctx context.Context, req OrderRequest) (domain.Order, error)
}

type CatalogRemote interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type OrderRequest struct {
	Lines    []domain.CartLine
	Address  domain.Address
	Schedule domain.DeliverySchedule
}

// Credentials supplies the bearer token attached to remote calls.
type Credentials interface {
	Token(ctx context.Context) (string, bool)
}

type Connectivity interface {
	Online() bool
}

type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}
